// Package tls serves the API over HTTPS with certificates obtained by
// CertMagic through Azure DNS-01 challenges.
package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"

	"github.com/jobrunner/geomkit/internal/config"
	"github.com/jobrunner/geomkit/internal/domain"
)

// Server wraps an HTTP server with automatic TLS. With TLS disabled it
// serves plain HTTP.
type Server struct {
	cfg       config.TLSConfig
	timeouts  config.ServerConfig
	handler   http.Handler
	logger    *slog.Logger
	magic     *certmagic.Config
	tlsConfig *tls.Config

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a server for handler. Certificates are not requested
// until ManageCertificates or the first TLS handshake.
func NewServer(cfg config.TLSConfig, timeouts config.ServerConfig, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		timeouts: timeouts,
		handler:  handler,
		logger:   logger,
	}
	if !cfg.Enabled {
		return s, nil
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}
	magic := certmagic.NewDefault()

	ca := certmagic.LetsEncryptProductionCA
	if cfg.Staging {
		ca = certmagic.LetsEncryptStagingCA
	}
	issuer := certmagic.NewACMEIssuer(magic, certmagic.ACMEIssuer{
		CA:     ca,
		Email:  cfg.Email,
		Agreed: true,
		DNS01Solver: &certmagic.DNS01Solver{
			DNSManager: certmagic.DNSManager{
				DNSProvider: &azure.Provider{
					SubscriptionId:    cfg.DNS.SubscriptionID,
					ResourceGroupName: cfg.DNS.ResourceGroupName,
					ClientId:          cfg.DNS.ClientID,
				},
			},
		},
	})
	magic.Issuers = []certmagic.Issuer{issuer}

	tlsConfig := magic.TLSConfig()
	tlsConfig.NextProtos = append([]string{"h2", "http/1.1"}, tlsConfig.NextProtos...)

	s.magic = magic
	s.tlsConfig = tlsConfig
	return s, nil
}

func validate(cfg config.TLSConfig) error {
	switch {
	case len(cfg.Domains) == 0:
		return &domain.ConfigError{Field: "tls.domains", Message: "TLS enabled but no domains specified"}
	case cfg.Email == "":
		return &domain.ConfigError{Field: "tls.email", Message: "TLS enabled but no email specified"}
	case cfg.DNS.SubscriptionID == "" || cfg.DNS.ResourceGroupName == "":
		return &domain.ConfigError{Field: "tls.dns", Message: "DNS-01 needs an Azure subscription and resource group"}
	}
	return nil
}

// ListenAndServe serves on addr until Shutdown is called. It returns nil
// after a graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		TLSConfig:         s.tlsConfig,
		ReadTimeout:       s.timeouts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeouts.WriteTimeout,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	var err error
	if s.cfg.Enabled {
		s.logger.Info("starting HTTPS server with DNS-01 challenge",
			"address", addr,
			"domains", s.cfg.Domains,
		)
		err = server.ListenAndServeTLS("", "")
	} else {
		s.logger.Info("starting HTTP server (TLS disabled)", "address", addr)
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server started by ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// TLSConfig returns the TLS configuration, nil when TLS is disabled.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// ManageCertificates obtains or renews certificates for all domains
// before the server starts accepting connections.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.cfg.Domains)
	if err := s.magic.ManageSync(ctx, s.cfg.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}
	s.logger.Info("certificates obtained successfully")
	return nil
}
