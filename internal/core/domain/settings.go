package domain

import (
	"regexp"
	"time"
)

const unknownDescription = "Unknown"

// StorageDriver selects the object storage backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageDriverS3 stores documents in an S3-compatible bucket.
	StorageDriverS3 StorageDriver = "s3"

	// StorageDriverMemory keeps documents in process memory. Development only.
	StorageDriverMemory StorageDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d StorageDriver) IsValid() bool {
	return d == StorageDriverS3 || d == StorageDriverMemory
}

// Description returns a human-readable description of the driver.
func (d StorageDriver) Description() string {
	switch d {
	case StorageDriverS3:
		return "S3 bucket"
	case StorageDriverMemory:
		return "In-memory (development)"
	default:
		return unknownDescription
	}
}

// ServerSettings holds HTTP listener settings.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// BaseURL is the externally visible URL used for join links and OAuth redirects.
	BaseURL string

	// TrustProxy keys rate limiting on X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool
}

// DatabaseSettings holds metadata store settings.
type DatabaseSettings struct {
	// Dir is the data directory. Empty means ~/.waiverdesk/data.
	Dir string
}

// StorageSettings holds object storage settings.
type StorageSettings struct {
	Driver          StorageDriver
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	// PublicBaseURL overrides the virtual-hosted bucket URL for public templates.
	PublicBaseURL string

	// PresignTTL is the lifetime of signed document URLs.
	PresignTTL time.Duration
}

// PDFSettings holds PDF tooling settings.
type PDFSettings struct {
	// PdftkPath is the pdftk executable used for form field enumeration.
	PdftkPath string
}

// AuthSettings holds session settings.
type AuthSettings struct {
	SessionTTL   time.Duration
	CookieSecure bool
}

// OAuthSettings holds the optional external identity provider.
type OAuthSettings struct {
	Provider     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Configured reports whether OAuth login is available.
func (o OAuthSettings) Configured() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// RateLimitSettings throttles login and signing requests per client.
type RateLimitSettings struct {
	RequestsPerMinute int
	Burst             int
}

// TemplateSettings controls HTML template loading.
type TemplateSettings struct {
	// Dir loads templates from disk instead of the embedded set.
	Dir string

	// Watch reloads templates from Dir when they change.
	Watch bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Server    ServerSettings
	Database  DatabaseSettings
	Storage   StorageSettings
	PDF       PDFSettings
	Auth      AuthSettings
	OAuth     OAuthSettings
	RateLimit RateLimitSettings
	Templates TemplateSettings
}

// DefaultPresignTTL is the default lifetime of signed document URLs.
const DefaultPresignTTL = 3600 * time.Second

// DefaultAppSettings returns settings with sensible defaults.
// Object storage credentials and OAuth are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageSettings{
			Driver:     StorageDriverS3,
			Region:     "us-east-1",
			PresignTTL: DefaultPresignTTL,
		},
		PDF: PDFSettings{
			PdftkPath: "pdftk",
		},
		Auth: AuthSettings{
			SessionTTL: 7 * 24 * time.Hour,
		},
		OAuth: OAuthSettings{
			Provider: "google",
		},
		RateLimit: RateLimitSettings{
			RequestsPerMinute: 30,
			Burst:             10,
		},
	}
}

var regionCodeRe = regexp.MustCompile(`(?i)\b([a-z]{2}-[a-z]+-\d+)\b`)

// RegionCode extracts an AWS region code from a display string such as
// "US East (N. Virginia) us-east-1". Plain codes are returned unchanged.
func RegionCode(region string) string {
	if m := regionCodeRe.FindStringSubmatch(region); m != nil {
		return m[1]
	}
	return region
}
