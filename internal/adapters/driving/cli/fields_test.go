package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waiver.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))
	return path
}

var regattaFields = []domain.RawField{
	{Name: "Full Name", Widget: domain.WidgetText},
	{Name: "Class", Widget: domain.WidgetChoice, Options: []string{"Laser", "420"}},
	{Name: "Emergency Contact", Widget: domain.WidgetText},
	{Name: "I Agree", Widget: domain.WidgetCheckbox},
}

func TestFieldsCmd_Table(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	useExtractor(t, stubExtractor{raws: regattaFields}, nil)

	out, err := execute(t, "", "--config", cfg, "fields", writePDF(t))

	require.NoError(t, err)
	assert.Contains(t, out, "4 form fields")
	assert.Contains(t, out, "Personal")
	assert.Contains(t, out, "fullName")
	assert.Contains(t, out, "Emergency")
	assert.Contains(t, out, "emergencyPhone")
	assert.Contains(t, out, "Laser | 420")
	assert.Contains(t, out, "checkbox")
	assert.NotContains(t, out, "Medical")
}

func TestFieldsCmd_JSON(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	useExtractor(t, stubExtractor{raws: regattaFields}, nil)

	out, err := execute(t, "", "--config", cfg, "fields", "--json", writePDF(t))
	require.NoError(t, err)

	var fields []domain.FormField
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.Len(t, fields, 4)
	assert.Equal(t, domain.FormField{Name: "fullName", Kind: domain.FieldKindText, Required: true}, fields[0])
	assert.Equal(t, []string{"Laser", "420"}, fields[1].Options)
	assert.Equal(t, domain.FieldKindSelect, fields[1].Kind)
}

func TestFieldsCmd_NoFields(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	useExtractor(t, stubExtractor{}, nil)

	out, err := execute(t, "", "--config", cfg, "fields", writePDF(t))

	require.NoError(t, err)
	assert.Contains(t, out, "No form fields found.")
}

func TestFieldsCmd_ExtractorMissing(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	useExtractor(t, nil, errors.New("pdftk not found in PATH"))

	_, err := execute(t, "", "--config", cfg, "fields", writePDF(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftk not found in PATH")
}

func TestFieldsCmd_ExtractFails(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	useExtractor(t, stubExtractor{err: errors.New("exit status 1")}, nil)

	_, err := execute(t, "", "--config", cfg, "fields", writePDF(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract fields")
}

func TestFieldsCmd_MissingFile(t *testing.T) {
	cfg, _ := writeConfig(t, "")

	_, err := execute(t, "", "--config", cfg, "fields", filepath.Join(t.TempDir(), "missing.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestFieldsCmd_RequiresFile(t *testing.T) {
	_, err := execute(t, "", "fields")

	assert.Error(t, err)
}
