package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envConfig is the DTO for environment parsing. Only scalar settings can be
// overridden through the environment; the realm list lives in the JSON file.
type envConfig struct {
	EndpointAddrHTTP   string        `env:"PORTAL_ADDRESS"`
	AuthDatabaseDSN    string        `env:"PORTAL_AUTH_DSN"`
	SecretKey          string        `env:"PORTAL_SECRET_KEY"`
	AccessTokenTTL     time.Duration `env:"PORTAL_ACCESS_TOKEN_TTL"`
	AccessCacheTTL     time.Duration `env:"PORTAL_ACCESS_CACHE_TTL"`
	ShopMarkupPercent  int64         `env:"PORTAL_SHOP_MARKUP"`
	ShopAllowedClasses []int         `env:"PORTAL_SHOP_CLASSES"`
	GMMailMinLevel     int           `env:"PORTAL_GM_MAIL_LEVEL"`
}

// parseEnv overlays environment variables onto cfg. A .env file in the
// working directory is loaded first if present, gamecrafter-style, so local
// runs need no exported variables.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	e := &envConfig{}
	if err := env.Parse(e); err != nil {
		panic(err)
	}

	if e.EndpointAddrHTTP != "" {
		cfg.EndpointAddrHTTP = e.EndpointAddrHTTP
	}
	if e.AuthDatabaseDSN != "" {
		cfg.AuthDatabaseDSN = e.AuthDatabaseDSN
	}
	if e.SecretKey != "" {
		cfg.SecretKey = e.SecretKey
	}
	if e.AccessTokenTTL > 0 {
		cfg.AccessTokenValidityDuration = e.AccessTokenTTL
	}
	if e.AccessCacheTTL > 0 {
		cfg.AccessCacheTTL = e.AccessCacheTTL
	}
	if e.ShopMarkupPercent > 0 {
		cfg.ShopMarkupPercent = e.ShopMarkupPercent
	}
	if len(e.ShopAllowedClasses) > 0 {
		cfg.ShopAllowedClasses = e.ShopAllowedClasses
	}
	if e.GMMailMinLevel > 0 {
		cfg.GMMailMinLevel = e.GMMailMinLevel
	}
}
