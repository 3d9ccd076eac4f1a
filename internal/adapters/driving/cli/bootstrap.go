package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/hasher"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/identity"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/objectstore/s3store"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driving/web"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
	"github.com/custodia-labs/waiverdesk/internal/core/services"
	"github.com/custodia-labs/waiverdesk/internal/logger"
	"github.com/custodia-labs/waiverdesk/internal/pdf"
)

// passwordCost is the bcrypt work factor for accounts created by this process.
var passwordCost = hasher.DefaultCost

// newExtractor returns a form field extractor backed by tool, or an error
// when the tool is not installed.
var newExtractor = func(tool string) (driven.FormFieldExtractor, error) {
	if err := pdf.CheckAvailable(tool); err != nil {
		return nil, err
	}
	return pdf.NewExtractor(tool), nil
}

// loadSettings opens the config file named by --config.
func loadSettings() (*services.SettingsService, string, error) {
	store, err := file.NewConfigStore(cfgFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open config: %w", err)
	}
	return services.NewSettingsService(store), store.Path(), nil
}

// currentSettings loads and returns the effective settings.
func currentSettings() (*domain.AppSettings, error) {
	svc, _, err := loadSettings()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// app holds the adapters and services wired from one set of settings.
type app struct {
	settings *domain.AppSettings
	store    *sqlite.Store
	objects  driven.ObjectStore
	services web.Services
}

// openApp opens the metadata store and object storage and wires every service.
func openApp(ctx context.Context, settings *domain.AppSettings) (*app, error) {
	logger.Section("Bootstrap")

	store, err := sqlite.NewStore(settings.Database.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database: %s", store.Path())

	objects, err := openObjectStore(ctx, settings.Storage)
	if err != nil {
		store.Close()
		return nil, err
	}

	idp, err := openIdentity(settings.OAuth)
	if err != nil {
		store.Close()
		return nil, err
	}

	var extractor driven.FormFieldExtractor
	if e, err := newExtractor(settings.PDF.PdftkPath); err != nil {
		logger.Warn("form field detection disabled: %v", err)
		logger.Warn("%s", pdf.InstallInstructions())
	} else {
		extractor = e
	}

	hash := hasher.NewBcrypt(passwordCost)
	users := store.UserStore()
	events := store.EventStore()
	waivers := store.WaiverStore()
	signatures := store.SignatureStore()
	saved := store.SavedSignatureStore()

	ingestion := services.NewIngestionService(extractor, waivers, objects)
	eventSvc := services.NewEventService(events, waivers, signatures, objects, ingestion)

	return &app{
		settings: settings,
		store:    store,
		objects:  objects,
		services: web.Services{
			Auth:      services.NewAuthService(users, store.SessionStore(), hash, idp, settings.Auth.SessionTTL),
			Profile:   services.NewProfileService(users, saved, hash),
			Events:    eventSvc,
			Signing:   services.NewSigningService(users, events, waivers, signatures, saved, objects, pdf.NewRenderer()),
			Ingestion: ingestion,
			Admin:     services.NewAdminService(events, signatures, objects, eventSvc, settings.Storage.PresignTTL),
			Dashboard: services.NewDashboardService(events, signatures),
			Health:    services.NewHealthService(store.StatsStore(), objects),
		},
	}, nil
}

// webConfig maps settings onto the HTTP server configuration.
func (a *app) webConfig() web.Config {
	s := a.settings
	return web.Config{
		Addr:              s.Server.Addr,
		BaseURL:           strings.TrimRight(s.Server.BaseURL, "/"),
		CookieSecure:      s.Auth.CookieSecure,
		TrustProxy:        s.Server.TrustProxy,
		RequestsPerMinute: s.RateLimit.RequestsPerMinute,
		Burst:             s.RateLimit.Burst,
		TemplatesDir:      s.Templates.Dir,
		WatchTemplates:    s.Templates.Watch,
	}
}

// Close releases the database.
func (a *app) Close() error {
	return a.store.Close()
}

func openObjectStore(ctx context.Context, cfg domain.StorageSettings) (driven.ObjectStore, error) {
	if cfg.Driver == domain.StorageDriverMemory {
		logger.Warn("using in-memory document storage; documents are lost on restart")
		return memory.NewObjectStore(cfg.PublicBaseURL), nil
	}

	objects, err := s3store.New(ctx, s3store.Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open document storage: %w", err)
	}
	logger.Debug("document storage: s3://%s (%s)", cfg.Bucket, cfg.Region)
	return objects, nil
}

// openIdentity returns nil when OAuth login is not configured.
func openIdentity(cfg domain.OAuthSettings) (driven.IdentityProvider, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	if !strings.EqualFold(cfg.Provider, "google") {
		return nil, fmt.Errorf("oauth provider %q: %w", cfg.Provider, domain.ErrNotConfigured)
	}

	provider, err := identity.New(identity.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure oauth: %w", err)
	}
	return provider, nil
}
