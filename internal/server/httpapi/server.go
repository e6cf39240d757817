// Package httpapi exposes the portal's thin HTTP surface: credential
// endpoints from the account service and the two delivery operations
// (purchase and GM mail). Page rendering and navigation belong to the web
// tier and are not served here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/tavrin/realmportal/internal/logging"
	"github.com/tavrin/realmportal/internal/server/config"
	"github.com/tavrin/realmportal/internal/server/services"
)

type Server struct {
	address   string
	accounts  *services.AccountService
	shop      *services.ShopService
	gmmail    *services.GMMailService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(cfg *config.Config, logger logging.Logger, accounts *services.AccountService, shop *services.ShopService, gmmail *services.GMMailService) *Server {
	return &Server{
		address:   cfg.EndpointAddrHTTP,
		accounts:  accounts,
		shop:      shop,
		gmmail:    gmmail,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger.With("module", "httpapi"),
	}
}

// Handler builds the route table. Split out of Run so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/shop/purchase", s.requireAccount(s.handlePurchase))
	mux.HandleFunc("POST /api/mail/send", s.requireAccount(s.handleSendMail))
	return s.requestLogger(mux)
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
