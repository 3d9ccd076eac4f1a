package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/waiverdesk/internal/core/services"
)

// settingKeys are the keys accepted by 'settings set'.
var settingKeys = []string{
	services.KeyServerAddr,
	services.KeyServerBaseURL,
	services.KeyServerTrustProxy,
	services.KeyDatabaseDir,
	services.KeyStorageDriver,
	services.KeyStorageBucket,
	services.KeyStorageRegion,
	services.KeyStorageEndpoint,
	services.KeyStorageAccessKeyID,
	services.KeyStorageSecretKey,
	services.KeyStoragePublicURL,
	services.KeyStoragePresignTTL,
	services.KeyPdftkPath,
	services.KeySessionTTLHours,
	services.KeyCookieSecure,
	services.KeyOAuthProvider,
	services.KeyOAuthClientID,
	services.KeyOAuthClientSecret,
	services.KeyOAuthRedirectURL,
	services.KeyRateLimitPerMinute,
	services.KeyRateLimitBurst,
	services.KeyTemplatesDir,
	services.KeyTemplatesWatch,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change server, storage and sign-in settings.

Values are stored in the config file. WAIVERDESK_<KEY> environment
variables (for example WAIVERDESK_STORAGE_BUCKET) take precedence.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting and save it to the config file.

Keys:
  ` + strings.Join(settingKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the settings can start the server",
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settingsService, path, err := loadSettings()
	if err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(title("Current Settings"))
	cmd.Println(mutedStyle.Render(path))
	cmd.Println()

	cmd.Println(headingStyle.Render("[Server]"))
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Base URL: %s\n", settings.Server.BaseURL)
	cmd.Printf("  Trust proxy headers: %s\n", yesNo(settings.Server.TrustProxy))
	cmd.Println()

	cmd.Println(headingStyle.Render("[Database]"))
	cmd.Printf("  Directory: %s\n", orDefault(settings.Database.Dir, "~/.waiverdesk/data"))
	cmd.Println()

	cmd.Println(headingStyle.Render("[Storage]"))
	cmd.Printf("  Driver: %s\n", settings.Storage.Driver.Description())
	cmd.Printf("  Bucket: %s\n", orDefault(settings.Storage.Bucket, "(not set)"))
	cmd.Printf("  Region: %s\n", settings.Storage.Region)
	if settings.Storage.Endpoint != "" {
		cmd.Printf("  Endpoint: %s\n", settings.Storage.Endpoint)
	}
	if settings.Storage.AccessKeyID != "" {
		cmd.Printf("  Access Key: %s\n", maskSecret(settings.Storage.AccessKeyID))
		cmd.Printf("  Secret Key: %s\n", maskSecret(settings.Storage.SecretAccessKey))
	} else {
		cmd.Printf("  Credentials: default AWS chain\n")
	}
	cmd.Printf("  Presigned URL lifetime: %s\n", settings.Storage.PresignTTL)
	cmd.Println()

	cmd.Println(headingStyle.Render("[PDF]"))
	cmd.Printf("  pdftk: %s\n", settings.PDF.PdftkPath)
	cmd.Println()

	cmd.Println(headingStyle.Render("[Sign-in]"))
	cmd.Printf("  Session lifetime: %s\n", settings.Auth.SessionTTL)
	cmd.Printf("  Secure cookies: %s\n", yesNo(settings.Auth.CookieSecure))
	if settings.OAuth.Configured() {
		cmd.Printf("  OAuth: %s (client %s)\n", settings.OAuth.Provider, maskSecret(settings.OAuth.ClientID))
		cmd.Printf("  OAuth redirect: %s\n", settings.OAuth.RedirectURL)
	} else {
		cmd.Printf("  OAuth: not configured\n")
	}
	if settings.RateLimit.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d/min (burst %d)\n", settings.RateLimit.RequestsPerMinute, settings.RateLimit.Burst)
	}
	cmd.Println()

	if settings.Templates.Dir != "" {
		cmd.Println(headingStyle.Render("[Templates]"))
		cmd.Printf("  Directory: %s\n", settings.Templates.Dir)
		cmd.Printf("  Watch: %s\n", yesNo(settings.Templates.Watch))
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'waiverdesk settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println(successStyle.Render("Configuration is valid."))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	if !slices.Contains(settingKeys, key) {
		return fmt.Errorf("unknown setting %q (run 'waiverdesk settings set --help' for the list)", args[0])
	}

	settingsService, _, err := loadSettings()
	if err != nil {
		return err
	}

	value, err := parseSetting(key, args[1])
	if err != nil {
		return err
	}
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := args[1]
	if isSecretKey(key) {
		shown = maskSecret(shown)
	}
	cmd.Printf("%s = %s\n", key, shown)

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Warning: %v", err)))
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	settingsService, _, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settingsService.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Println(errorStyle.Render("  " + line))
		}
		return errors.New("configuration is invalid")
	}
	cmd.Println(successStyle.Render("Configuration is valid."))
	return nil
}

// Helper functions.

// parseSetting converts raw to the type stored for key.
func parseSetting(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch key {
	case services.KeyStoragePresignTTL, services.KeySessionTTLHours,
		services.KeyRateLimitPerMinute, services.KeyRateLimitBurst:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number, got %q", key, raw)
		}
		return n, nil
	case services.KeyCookieSecure, services.KeyTemplatesWatch, services.KeyServerTrustProxy:
		switch strings.ToLower(raw) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%s must be true or false, got %q", key, raw)
	default:
		return raw, nil
	}
}

func isSecretKey(key string) bool {
	return key == services.KeyStorageSecretKey || key == services.KeyOAuthClientSecret
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
