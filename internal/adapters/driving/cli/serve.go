package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driving/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the waiver web server.

The server runs until interrupted. Settings are validated before anything
is opened; run 'waiverdesk settings check' to see problems without starting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settingsService, _, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if serveAddr != "" {
		settings.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, settings)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := web.New(a.webConfig(), a.services)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer server.Close()

	cmd.Println(titleStyle.Render("waiverdesk " + version))
	cmd.Printf("  Listening: %s\n", settings.Server.Addr)
	cmd.Printf("  Base URL:  %s\n", settings.Server.BaseURL)
	cmd.Printf("  Storage:   %s\n", settings.Storage.Driver.Description())
	if settings.OAuth.Configured() {
		cmd.Printf("  OAuth:     %s\n", settings.OAuth.Provider)
	}
	cmd.Println(mutedStyle.Render("Press Ctrl+C to stop."))

	return server.Run(ctx)
}
