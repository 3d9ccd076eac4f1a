package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ArtifactRenderer = (*Renderer)(nil)

const (
	pageMargin      = 20.0
	lineHeight      = 6.0
	signatureWidth  = 70.0
	signatureHeight = 25.0
	timestampLayout = "2 January 2006 15:04 MST"
)

// Renderer produces signed waiver PDFs.
type Renderer struct {
	text *bluemonday.Policy
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{text: bluemonday.StrictPolicy()}
}

// Render lays out the waiver text, the signer's answers and the captured
// signature on A4 pages.
func (r *Renderer) Render(ctx context.Context, a driven.Artifact) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.Waiver == nil || a.Event == nil || a.Signer == nil || a.Signature == nil {
		return nil, domain.Invalid("artifact", "is incomplete")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetTitle(a.Waiver.Title, true)
	doc.SetAuthor(a.Signer.Name, true)
	doc.SetCreationDate(a.Signature.SignedAt)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, tr(a.Waiver.Title), "", "L", false)
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, lineHeight, tr(eventLine(a.Event)), "", "L", false)
	doc.Ln(4)

	if body := r.plainText(a.Waiver.Content); body != "" {
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, lineHeight, tr(body), "", "L", false)
		doc.Ln(4)
	}
	if a.Waiver.DocumentURL != "" {
		doc.SetFont("Helvetica", "I", 9)
		doc.MultiCell(0, lineHeight, tr("Waiver document: "+a.Waiver.DocumentURL), "", "L", false)
		doc.Ln(2)
	}

	if answers := answerRows(a.Fields, a.Signature.FormData); len(answers) > 0 {
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, "Participant details", "", 1, "L", false, 0, "")
		for _, row := range answers {
			doc.SetFont("Helvetica", "B", 10)
			doc.CellFormat(60, lineHeight, tr(row[0]), "", 0, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(0, lineHeight, tr(row[1]), "", "L", false)
		}
		doc.Ln(4)
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Signature", "", 1, "L", false, 0, "")
	r.drawSignature(doc, a.Signature)

	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, lineHeight, tr(fmt.Sprintf("Signed by %s <%s>", a.Signer.Name, a.Signer.Email)), "", "L", false)
	doc.MultiCell(0, lineHeight, "Signed at "+a.Signature.SignedAt.UTC().Format(timestampLayout), "", "L", false)
	if a.Signature.IPAddress != "" {
		doc.MultiCell(0, lineHeight, tr("IP address "+a.Signature.IPAddress), "", "L", false)
	}
	doc.SetFont("Helvetica", "", 8)
	doc.MultiCell(0, lineHeight, "Reference "+a.Signature.ID, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSignature places the captured image, or a typed line for styles
// whose image cannot be decoded.
func (r *Renderer) drawSignature(doc *fpdf.Fpdf, sig *domain.Signature) {
	img, err := domain.ParseImageDataURI(sig.ImageData)
	if err == nil {
		opts := fpdf.ImageOptions{ImageType: img.ImageType(), ReadDpi: false}
		doc.RegisterImageOptionsReader(sig.ID, opts, bytes.NewReader(img.Bytes))
		if doc.Ok() {
			y := doc.GetY()
			doc.ImageOptions(sig.ID, pageMargin, y, signatureWidth, signatureHeight, false, opts, 0, "")
			doc.SetY(y + signatureHeight + 2)
			return
		}
		doc.ClearError()
	}
	doc.SetFont("Courier", "I", 14)
	doc.CellFormat(0, 12, "[signed electronically: "+string(sig.Style)+"]", "B", 1, "L", false, 0, "")
}

// plainText reduces waiver content, which may carry markup, to text.
func (r *Renderer) plainText(content string) string {
	content = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n").Replace(content)
	return strings.TrimSpace(html.UnescapeString(r.text.Sanitize(content)))
}

func eventLine(e *domain.Event) string {
	line := e.Title + ", " + e.StartDate.Format("2 January 2006")
	if e.Location != "" {
		line += ", " + e.Location
	}
	return line
}

// answerRows pairs field labels with answers in field order, followed by
// any answers without a descriptor in key order.
func answerRows(fields []domain.FormField, data map[string]string) [][2]string {
	var rows [][2]string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Name] = true
		if v := data[f.Name]; v != "" {
			rows = append(rows, [2]string{f.Label(), v})
		}
	}
	for _, k := range slices.Sorted(maps.Keys(data)) {
		if !seen[k] && data[k] != "" {
			rows = append(rows, [2]string{domain.FieldLabel(k), data[k]})
		}
	}
	return rows
}
