package pdf

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error

	name string
	args []string
	file []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	if len(args) > 0 {
		m.file, _ = os.ReadFile(args[0])
	}
	return m.output, m.err
}

const sampleDump = `---
FieldType: Text
FieldName: Participant Name
FieldFlags: 0
FieldJustification: Left
---
FieldType: Button
FieldName: agree
FieldFlags: 0
FieldValue: Off
FieldJustification: Left
FieldStateOption: Off
FieldStateOption: Yes
---
FieldType: Choice
FieldName: Boat Class
FieldFlags: 131072
FieldStateOption: Laser
FieldStateOption: 420
---
FieldType: Button
FieldName: Submit
FieldFlags: 65536
---
FieldType: Button
FieldName: Experience
FieldFlags: 49152
FieldStateOption: Beginner
FieldStateOption: Expert
FieldStateOption: Off
---
FieldType: Text
FieldNameAlt: orphan tooltip
`

func TestParseFieldDump(t *testing.T) {
	fields := ParseFieldDump([]byte(sampleDump))

	assert.Equal(t, []domain.RawField{
		{Name: "Participant Name", Widget: domain.WidgetText},
		{Name: "agree", Widget: domain.WidgetCheckbox},
		{Name: "Boat Class", Widget: domain.WidgetChoice, Options: []string{"Laser", "420"}},
		{Name: "Experience", Widget: domain.WidgetChoice, Options: []string{"Beginner", "Expert"}},
	}, fields)
}

func TestParseFieldDump_Empty(t *testing.T) {
	fields := ParseFieldDump(nil)

	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestParseFieldDump_CRLF(t *testing.T) {
	fields := ParseFieldDump([]byte("---\r\nFieldType: Text\r\nFieldName: DOB\r\n"))

	assert.Equal(t, []domain.RawField{{Name: "DOB", Widget: domain.WidgetText}}, fields)
}

func TestExtractFields(t *testing.T) {
	runner := &mockRunner{output: []byte(sampleDump)}
	extractor := NewExtractorWithRunner("", runner)
	doc := []byte("%PDF-1.7 fake")

	fields, err := extractor.ExtractFields(context.Background(), doc)

	require.NoError(t, err)
	assert.Len(t, fields, 4)
	assert.Equal(t, DefaultTool, runner.name)
	assert.Equal(t, []string{"dump_data_fields_utf8", "output", "-"}, runner.args[1:])
	assert.Equal(t, doc, runner.file)

	_, statErr := os.Stat(runner.args[0])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestExtractFields_NotPDF(t *testing.T) {
	runner := &mockRunner{}
	extractor := NewExtractorWithRunner("pdftk", runner)

	_, err := extractor.ExtractFields(context.Background(), []byte("PK\x03\x04 docx"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, runner.name)
}

func TestExtractFields_ToolFailure(t *testing.T) {
	extractor := NewExtractorWithRunner("pdftk", &mockRunner{err: errors.New("exit status 1")})

	_, err := extractor.ExtractFields(context.Background(), []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestExtractFields_ToolMissing(t *testing.T) {
	extractor := NewExtractorWithRunner("pdftk", &mockRunner{err: ErrToolNotFound})

	_, err := extractor.ExtractFields(context.Background(), []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecRunner_NotFound(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "waiverdesk-no-such-tool")

	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestCheckAvailable(t *testing.T) {
	assert.ErrorIs(t, CheckAvailable("waiverdesk-no-such-tool"), ErrToolNotFound)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install pdftk-java")
	assert.Contains(t, instructions, "apt install pdftk-java")
}

// Integration test - only runs if pdftk is available.
func TestExtractFields_Integration(t *testing.T) {
	if err := CheckAvailable(""); err != nil {
		t.Skip("pdftk not available, skipping integration test")
	}

	pdfBytes := renderSample(t, "")
	fields, err := NewExtractor("").ExtractFields(context.Background(), pdfBytes)

	require.NoError(t, err)
	assert.Empty(t, fields)
}
