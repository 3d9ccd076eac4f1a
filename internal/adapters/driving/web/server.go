package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/ports/driving"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "waiverdesk_session"

// oauthStateCookie carries the OAuth state between start and callback.
const oauthStateCookie = "waiverdesk_oauth_state"

// defaultMaxUpload bounds multipart uploads of waiver documents.
const defaultMaxUpload = 20 << 20

// Config configures the HTTP server.
type Config struct {
	Addr    string
	BaseURL string

	// CookieSecure marks session cookies Secure. Enable behind HTTPS.
	CookieSecure bool

	// TrustProxy keys the limiter on forwarded client headers instead of
	// the peer address.
	TrustProxy bool

	// RequestsPerMinute and Burst throttle login and signing per client.
	// Zero disables throttling.
	RequestsPerMinute int
	Burst             int

	// TemplatesDir overrides the embedded page templates.
	TemplatesDir string

	// WatchTemplates reloads TemplatesDir on change.
	WatchTemplates bool

	MaxUploadBytes int64
}

// Services are the driving ports the server calls.
type Services struct {
	Auth      driving.AuthService
	Profile   driving.ProfileService
	Events    driving.EventService
	Signing   driving.SigningService
	Ingestion driving.IngestionService
	Admin     driving.AdminService
	Dashboard driving.DashboardService
	Health    driving.HealthService
}

// Server serves the waiver pages and JSON API.
type Server struct {
	cfg     Config
	svc     Services
	pages   *templates
	limiter *ipLimiter
	handler http.Handler
}

// New creates a server and parses its templates.
func New(cfg Config, svc Services) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}

	pages, err := loadTemplates(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if cfg.WatchTemplates && cfg.TemplatesDir != "" {
		if err := pages.watch(cfg.TemplatesDir); err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg:     cfg,
		svc:     svc,
		pages:   pages,
		limiter: newIPLimiter(cfg.RequestsPerMinute, cfg.Burst),
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = logRequests(s.loadSession(mux))
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", listener.Addr())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// Close releases the template watcher.
func (s *Server) Close() error {
	return s.pages.Close()
}
