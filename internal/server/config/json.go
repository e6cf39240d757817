package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tavrin/realmportal/internal/flagx"
	"github.com/tavrin/realmportal/internal/server/realms"
	"github.com/tavrin/realmportal/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Duration fields
// accept both "15m"-style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	AuthDatabaseDSN             string          `json:"auth_database_dsn"`
	Realms                      []realms.Config `json:"realms"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration  `json:"access_token_validity_duration"`
	AccessCacheTTL              timex.Duration  `json:"access_cache_ttl"`
	ShopMarkupPercent           int64           `json:"shop_markup_percent"`
	ShopAllowedClasses          []int           `json:"shop_allowed_classes"`
	GMMailMinLevel              int             `json:"gm_mail_min_level"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Without the flag no file is
// loaded. An unreadable or invalid file panics: a half-applied config is
// worse than not starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.AuthDatabaseDSN != "" {
		config.AuthDatabaseDSN = c.AuthDatabaseDSN
	}
	if len(c.Realms) > 0 {
		config.Realms = c.Realms
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.AccessCacheTTL.Duration > 0 {
		config.AccessCacheTTL = time.Duration(c.AccessCacheTTL.Duration)
	}
	if c.ShopMarkupPercent > 0 {
		config.ShopMarkupPercent = c.ShopMarkupPercent
	}
	if len(c.ShopAllowedClasses) > 0 {
		config.ShopAllowedClasses = c.ShopAllowedClasses
	}
	if c.GMMailMinLevel > 0 {
		config.GMMailMinLevel = c.GMMailMinLevel
	}
}
