package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrToolNotFound is returned when pdftk is not installed.
var ErrToolNotFound = errors.New("pdftk not found: install pdftk to read waiver form fields")

// DefaultTool is the pdftk executable looked up on PATH.
const DefaultTool = "pdftk"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name and returns its standard output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrToolNotFound
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CheckAvailable reports whether tool can be found on PATH.
func CheckAvailable(tool string) error {
	if tool == "" {
		tool = DefaultTool
	}
	if _, err := exec.LookPath(tool); err != nil {
		return ErrToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific pdftk install hints.
func InstallInstructions() string {
	return `pdftk is required to read waiver form fields.

Install:
  macOS:   brew install pdftk-java
  Ubuntu:  apt install pdftk-java
  Fedora:  dnf install pdftk-java`
}
