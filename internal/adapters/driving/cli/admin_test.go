package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func fastPasswords(t *testing.T) {
	t.Helper()
	original := passwordCost
	passwordCost = bcrypt.MinCost
	t.Cleanup(func() { passwordCost = original })
}

func findUser(t *testing.T, dataDir, email string) *domain.User {
	t.Helper()
	store, err := sqlite.NewStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.UserStore().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

func TestAdminCreate(t *testing.T) {
	fastPasswords(t)
	cfg, dataDir := writeConfig(t, "")

	out, err := execute(t, "correct-horse\ncorrect-horse\n",
		"--config", cfg, "admin", "create", "--email", "Coach@Club.org", "--name", "Coach", "--club", "Harbour SC")

	require.NoError(t, err)
	assert.Contains(t, out, "Admin account created.")
	assert.Contains(t, out, "Email: coach@club.org")
	assert.Contains(t, out, "http://localhost:8080/login")

	user := findUser(t, dataDir, "coach@club.org")
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "Harbour SC", user.ClubName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestAdminCreate_Prompts(t *testing.T) {
	fastPasswords(t)
	cfg, dataDir := writeConfig(t, "")

	out, err := execute(t, "sam@club.org\nSam\nBay Club\ncorrect-horse\ncorrect-horse\n",
		"--config", cfg, "admin", "create")

	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Club: ")
	assert.Contains(t, out, "Confirm password: ")
	assert.Equal(t, "Bay Club", findUser(t, dataDir, "sam@club.org").ClubName)
}

func TestAdminCreate_PasswordMismatch(t *testing.T) {
	cfg, _ := writeConfig(t, "")

	_, err := execute(t, "correct-horse\nbattery-staple\n",
		"--config", cfg, "admin", "create", "--email", "a@club.org", "--name", "A", "--club", "C")

	require.Error(t, err)
	assert.Equal(t, "passwords do not match", err.Error())
}

func TestAdminCreate_ShortPassword(t *testing.T) {
	fastPasswords(t)
	cfg, _ := writeConfig(t, "")

	_, err := execute(t, "short\nshort\n",
		"--config", cfg, "admin", "create", "--email", "a@club.org", "--name", "A", "--club", "C")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdminCreate_Duplicate(t *testing.T) {
	fastPasswords(t)
	cfg, _ := writeConfig(t, "")
	args := []string{"--config", cfg, "admin", "create", "--email", "a@club.org", "--name", "A", "--club", "C"}

	_, err := execute(t, "correct-horse\ncorrect-horse\n", args...)
	require.NoError(t, err)

	_, err = execute(t, "correct-horse\ncorrect-horse\n", args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user already exists")
}

func TestAdminCreate_NoPassword(t *testing.T) {
	cfg, _ := writeConfig(t, "")

	_, err := execute(t, "", "--config", cfg, "admin", "create", "--email", "a@club.org", "--name", "A", "--club", "C")

	require.Error(t, err)
	assert.Equal(t, "no password given", err.Error())
}

func TestReadPassword_KeepsSpaces(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(new(strings.Builder))
	cmd.SetIn(strings.NewReader("  padded pass  \r\n"))

	password, err := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()), "Password: ")

	require.NoError(t, err)
	assert.Equal(t, "  padded pass  ", password)
}

func TestPrompt_UsesFlagValue(t *testing.T) {
	cmd := &cobra.Command{}
	out := new(strings.Builder)
	cmd.SetOut(out)

	got := prompt(cmd, bufio.NewReader(strings.NewReader("typed\n")), "Email: ", "flag@club.org")

	assert.Equal(t, "flag@club.org", got)
	assert.Empty(t, out.String())
}
