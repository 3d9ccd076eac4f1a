package domain

import (
	"path"
	"strings"
	"time"
)

// Event is an organised activity participants sign a waiver to join.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartDate   time.Time

	// EndDate is nil for single-day or open-ended events.
	EndDate *time.Time

	// IsActive gates signing. Inactive events are hidden from participants.
	IsActive bool

	// CreatedBy is the ID of the admin who created the event.
	CreatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Waiver is the legal document attached to an event. An event has at most one waiver.
type Waiver struct {
	ID      string
	EventID string
	Title   string

	// Content is the free-text waiver body. It may be empty when a document is attached.
	Content string

	// DocumentKey is the object storage key of the uploaded template, if any.
	DocumentKey string

	// DocumentURL is the public URL of the uploaded template, if any.
	DocumentURL string

	// Fields are the descriptors extracted from the uploaded PDF.
	Fields []FormField

	CreatedAt time.Time
}

// HasDocument reports whether a template document is attached.
func (w *Waiver) HasDocument() bool {
	return w.DocumentKey != "" || w.DocumentURL != ""
}

// Signature is the record of one signer signing one event's waiver.
type Signature struct {
	ID       string
	UserID   string
	EventID  string
	WaiverID string
	Style    SignatureStyle

	// ImageData is the captured signature as an image data URI.
	ImageData string

	// FormData holds answers to the waiver's structured fields, keyed by field name.
	FormData map[string]string

	IPAddress string
	UserAgent string

	// ArtifactKey is the storage key of the signed PDF. Empty when the
	// artifact could not be stored.
	ArtifactKey string

	SignedAt time.Time
}

// HasArtifact reports whether the signed document was stored.
func (s *Signature) HasArtifact() bool {
	return s.ArtifactKey != ""
}

// SignatureStyle is the visual style chosen by the signer.
type SignatureStyle string

// Available signature styles.
const (
	StyleCursive SignatureStyle = "cursive"
	StyleFormal  SignatureStyle = "formal"
	StyleInitial SignatureStyle = "initial"
	StyleStamp   SignatureStyle = "stamp"
	StyleMark    SignatureStyle = "mark"
)

// SignatureStyles lists the styles offered on the signing page.
var SignatureStyles = []SignatureStyle{StyleCursive, StyleFormal, StyleInitial, StyleStamp, StyleMark}

// IsValid returns true if the style is recognised.
func (s SignatureStyle) IsValid() bool {
	switch s {
	case StyleCursive, StyleFormal, StyleInitial, StyleStamp, StyleMark:
		return true
	default:
		return false
	}
}

// Reusable reports whether a signature in this style may become the
// signer's saved default. Marks and stamps are not personal signatures.
func (s SignatureStyle) Reusable() bool {
	return s != StyleMark && s != StyleStamp
}

// SigningState is the state of a signer with respect to one event.
type SigningState string

// Signing states. Signed is terminal.
const (
	StateUnsigned SigningState = "unsigned"
	StateSigned   SigningState = "signed"
)

// SigningStateOf derives the state from an existing signature lookup.
func SigningStateOf(existing *Signature) SigningState {
	if existing != nil {
		return StateSigned
	}
	return StateUnsigned
}

// SavedSignature is a user's reusable signature image.
type SavedSignature struct {
	ID        string
	UserID    string
	ImageData string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Object storage key prefixes.
const (
	TemplatePrefix = "waivers/"
	ArtifactPrefix = "signed-waivers/"
)

// TemplateKey returns the public storage key of an uploaded waiver template.
func TemplateKey(eventID, filename string) string {
	return TemplatePrefix + eventID + "/" + path.Base(filename)
}

// ArtifactKey returns the private storage key of a signed waiver document.
func ArtifactKey(eventID, signerID, signatureID string) string {
	return ArtifactPrefix + eventID + "/" + signerID + "/" + signatureID + ".pdf"
}

// KeyFromURL extracts the "waivers/..." key from a stored public template URL.
// Returns empty string if the URL holds no template key.
func KeyFromURL(url string) string {
	idx := strings.Index(url, "/"+TemplatePrefix)
	if idx < 0 {
		if strings.HasPrefix(url, TemplatePrefix) {
			return url
		}
		return ""
	}
	return url[idx+1:]
}
