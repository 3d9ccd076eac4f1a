package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FormFieldExtractor = (*Extractor)(nil)

// Button field flags from the PDF specification.
const (
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
)

// Extractor enumerates AcroForm fields with pdftk.
type Extractor struct {
	tool   string
	runner CommandRunner
}

// NewExtractor creates an extractor that runs tool (pdftk when empty).
func NewExtractor(tool string) *Extractor {
	return NewExtractorWithRunner(tool, ExecRunner{})
}

// NewExtractorWithRunner creates an extractor with a custom command runner.
func NewExtractorWithRunner(tool string, runner CommandRunner) *Extractor {
	if tool == "" {
		tool = DefaultTool
	}
	return &Extractor{tool: tool, runner: runner}
}

// ExtractFields returns the form fields of document in document order.
func (e *Extractor) ExtractFields(ctx context.Context, document []byte) ([]domain.RawField, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(document, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, domain.Invalid("document", "is not a PDF")
	}

	tmp, err := os.CreateTemp("", "waiverdesk-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(document); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, e.tool, tmp.Name(), "dump_data_fields_utf8", "output", "-")
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read form fields: %v", domain.ErrUpstream, err)
	}

	return ParseFieldDump(out), nil
}

// ParseFieldDump parses pdftk dump_data_fields output. Records are separated
// by "---" lines; push buttons and unnamed fields are skipped.
func ParseFieldDump(out []byte) []domain.RawField {
	fields := []domain.RawField{}

	var (
		cur     rawRecord
		started bool
	)
	flush := func() {
		if started {
			if f, ok := cur.field(); ok {
				fields = append(fields, f)
			}
		}
		cur = rawRecord{}
		started = false
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "---" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			key, ok = strings.CutSuffix(line, ":")
			if !ok {
				continue
			}
		}
		started = true
		switch key {
		case "FieldType":
			cur.fieldType = value
		case "FieldName":
			cur.name = value
		case "FieldFlags":
			cur.flags, _ = strconv.Atoi(value)
		case "FieldStateOption":
			cur.options = append(cur.options, value)
		}
	}
	flush()

	return fields
}

type rawRecord struct {
	fieldType string
	name      string
	flags     int
	options   []string
}

func (r rawRecord) field() (domain.RawField, bool) {
	if r.name == "" {
		return domain.RawField{}, false
	}
	f := domain.RawField{Name: r.name, Widget: domain.WidgetText}
	switch r.fieldType {
	case "Button":
		if r.flags&flagPushButton != 0 {
			return domain.RawField{}, false
		}
		if r.flags&flagRadio != 0 {
			f.Widget = domain.WidgetChoice
			f.Options = withoutOff(r.options)
			break
		}
		f.Widget = domain.WidgetCheckbox
	case "Choice":
		f.Widget = domain.WidgetChoice
		f.Options = r.options
	}
	return f, true
}

// withoutOff drops the radio group's unselected state.
func withoutOff(options []string) []string {
	var out []string
	for _, o := range options {
		if o != "Off" {
			out = append(out, o)
		}
	}
	return out
}
