package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/hasher"
	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/services"
)

var (
	adminEmail string
	adminName  string
	adminClub  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create a club admin account.

Missing details are prompted for. The password is always read from the
terminal (or standard input when it is not a terminal) and must be
entered twice.`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "admin display name")
	adminCreateCmd.Flags().StringVar(&adminClub, "club", "", "club name")
	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	settings, err := currentSettings()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	signup := domain.AdminSignup{
		Email:    prompt(cmd, reader, "Email: ", adminEmail),
		Name:     prompt(cmd, reader, "Name: ", adminName),
		ClubName: prompt(cmd, reader, "Club: ", adminClub),
	}

	password, err := readPassword(cmd, reader, "Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword(cmd, reader, "Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	signup.Password = password

	store, err := sqlite.NewStore(settings.Database.Dir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	auth := services.NewAuthService(
		store.UserStore(), store.SessionStore(), hasher.NewBcrypt(passwordCost), nil, settings.Auth.SessionTTL,
	)
	user, err := auth.RegisterAdmin(cmd.Context(), signup)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	cmd.Println(successStyle.Render("Admin account created."))
	cmd.Printf("  Email: %s\n", user.Email)
	cmd.Printf("  Club:  %s\n", user.ClubName)
	cmd.Println(mutedStyle.Render("Sign in at " + strings.TrimRight(settings.Server.BaseURL, "/") + "/login"))
	return nil
}

// Helper functions.

// prompt returns value when set, otherwise a line read after printing label.
func prompt(cmd *cobra.Command, reader *bufio.Reader, label, value string) string {
	if value != "" {
		return value
	}
	cmd.Print(label)
	return readLine(reader)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo from a terminal and falls back to a plain line.
func readPassword(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	cmd.Print(label)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(input, "\r\n"), nil
}
