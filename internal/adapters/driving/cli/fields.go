package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/pdf"
)

var fieldsJSON bool

var fieldsCmd = &cobra.Command{
	Use:   "fields <file.pdf>",
	Short: "Show the form fields detected in a PDF",
	Long: `Enumerate the form fields of a fillable PDF and show how each one
would be presented on the signing page.

Requires pdftk (see pdf.pdftk_path).`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "print descriptors as JSON")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	extractor, err := newExtractor(settings.PDF.PdftkPath)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, pdf.InstallInstructions())
	}

	raws, err := extractor.ExtractFields(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract fields: %w", err)
	}
	fields := domain.ClassifyFields(raws)

	if fieldsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	}

	if len(fields) == 0 {
		cmd.Println(warningStyle.Render("No form fields found."))
		cmd.Println(mutedStyle.Render("Participants will sign the waiver text only."))
		return nil
	}

	cmd.Println(title(fmt.Sprintf("%d form fields", len(fields))))
	groups := domain.GroupFields(fields)
	for _, group := range domain.FieldGroups {
		members := groups[group]
		if len(members) == 0 {
			continue
		}
		cmd.Println()
		cmd.Println(headingStyle.Render(domain.FieldLabel(string(group))))
		for _, f := range members {
			line := fmt.Sprintf("  %-28s %-10s", f.Name, f.Kind)
			if len(f.Options) > 0 {
				line += " " + mutedStyle.Render(strings.Join(f.Options, " | "))
			}
			cmd.Println(strings.TrimRight(line, " "))
		}
	}
	return nil
}
