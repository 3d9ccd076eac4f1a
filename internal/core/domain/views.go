package domain

import (
	"path"
	"strings"
	"time"
)

// Upload is a document submitted through a form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsPDF reports whether the upload should be introspected for form fields.
func (u *Upload) IsPDF() bool {
	if u == nil {
		return false
	}
	if strings.EqualFold(u.ContentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(path.Ext(u.Filename), ".pdf")
}

// SignatureDetail is a signature joined with its signer and event.
type SignatureDetail struct {
	Signature
	SignerName  string
	SignerEmail string
	EventTitle  string
}

// EventSummary is an event with its waiver and signature count.
type EventSummary struct {
	Event
	Waiver         *Waiver
	SignatureCount int
}

// Stats holds aggregate record counts.
type Stats struct {
	Users            int `json:"users"`
	Admins           int `json:"admins"`
	Events           int `json:"events"`
	ActiveEvents     int `json:"activeEvents"`
	Waivers          int `json:"waivers"`
	Signatures       int `json:"signatures"`
	RecentSignatures int `json:"recentSignatures"`
}

// SignRequest is a signer's submission for one event.
type SignRequest struct {
	SignerID  string
	EventID   string
	Style     SignatureStyle
	ImageData string
	FormData  map[string]string
	IPAddress string
	UserAgent string
}

// SignResult reports the outcome of signing. The record always exists when
// no error is returned; ArtifactStored is false when the signed document
// could not be rendered or uploaded.
type SignResult struct {
	SignatureID    string
	ArtifactStored bool
}

// SigningView is everything needed to render the signing page.
type SigningView struct {
	Event     *Event
	Waiver    *Waiver
	State     SigningState
	Existing  *Signature
	SavedSign *SavedSignature
}

// EventInput describes a new event.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     *time.Time
}

// WaiverInput describes the waiver attached to a new event.
type WaiverInput struct {
	Title   string
	Content string

	// Document is the optional uploaded template.
	Document *Upload
}

// EventPatch is a partial event update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	ClearEnd    bool
	IsActive    *bool
}

// DeleteResult reports what an event deletion removed.
type DeleteResult struct {
	DeletedObjects int
}

// AdminOverview is the admin landing page.
type AdminOverview struct {
	Events          []EventSummary
	TotalSignatures int
}

// EventDetail is one event with its signatures, newest first.
type EventDetail struct {
	EventSummary
	Signatures []SignatureDetail
}

// Dashboard is a participant's landing page.
type Dashboard struct {
	Events     []EventSummary
	Signatures []SignatureDetail
}

// AdminSignup describes a new admin account.
type AdminSignup struct {
	Email    string
	Password string
	Name     string
	ClubName string
}

// ProfilePatch is a partial profile update. Empty fields are left unchanged.
type ProfilePatch struct {
	Name            string
	Email           string
	ClubName        string
	CurrentPassword string
	NewPassword     string
}

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthReport describes service health.
type HealthReport struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	ObjectStore string    `json:"objectStore"`
	Stats       Stats     `json:"stats"`
	CheckedAt   time.Time `json:"checkedAt"`
}
