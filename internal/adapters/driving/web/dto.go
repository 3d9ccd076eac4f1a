package web

import (
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

type userJSON struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	ClubName string      `json:"clubName,omitempty"`
	Role     domain.Role `json:"role"`
}

func toUserJSON(u *domain.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, Name: u.Name, ClubName: u.ClubName, Role: u.Role}
}

type waiverJSON struct {
	ID        string             `json:"id"`
	EventID   string             `json:"eventId"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	PDFURL    string             `json:"pdfUrl,omitempty"`
	Fields    []domain.FormField `json:"fields"`
	CreatedAt time.Time          `json:"createdAt"`
}

func toWaiverJSON(w *domain.Waiver) *waiverJSON {
	if w == nil {
		return nil
	}
	fields := w.Fields
	if fields == nil {
		fields = []domain.FormField{}
	}
	return &waiverJSON{
		ID:        w.ID,
		EventID:   w.EventID,
		Title:     w.Title,
		Content:   w.Content,
		PDFURL:    w.DocumentURL,
		Fields:    fields,
		CreatedAt: w.CreatedAt,
	}
}

type eventJSON struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Location       string      `json:"location"`
	StartDate      time.Time   `json:"startDate"`
	EndDate        *time.Time  `json:"endDate"`
	IsActive       bool        `json:"isActive"`
	CreatedBy      string      `json:"createdBy"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	Waiver         *waiverJSON `json:"waiver,omitempty"`
	SignatureCount *int        `json:"signatureCount,omitempty"`
}

func toEventJSON(e *domain.Event) eventJSON {
	return eventJSON{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		IsActive:    e.IsActive,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toSummaryJSON(s *domain.EventSummary) eventJSON {
	out := toEventJSON(&s.Event)
	out.Waiver = toWaiverJSON(s.Waiver)
	count := s.SignatureCount
	out.SignatureCount = &count
	return out
}

func toSummariesJSON(summaries []domain.EventSummary) []eventJSON {
	out := make([]eventJSON, 0, len(summaries))
	for i := range summaries {
		out = append(out, toSummaryJSON(&summaries[i]))
	}
	return out
}

type signatureJSON struct {
	ID             string                `json:"id"`
	EventID        string                `json:"eventId"`
	WaiverID       string                `json:"waiverId"`
	SignatureStyle domain.SignatureStyle `json:"signatureStyle"`
	FormData       map[string]string     `json:"formData,omitempty"`
	HasDocument    bool                  `json:"hasDocument"`
	SignedAt       time.Time             `json:"signedAt"`
	EventTitle     string                `json:"eventTitle,omitempty"`
	SignerName     string                `json:"signerName,omitempty"`
	SignerEmail    string                `json:"signerEmail,omitempty"`
}

func toSignatureJSON(d *domain.SignatureDetail) signatureJSON {
	return signatureJSON{
		ID:             d.ID,
		EventID:        d.EventID,
		WaiverID:       d.WaiverID,
		SignatureStyle: d.Style,
		FormData:       d.FormData,
		HasDocument:    d.HasArtifact(),
		SignedAt:       d.SignedAt,
		EventTitle:     d.EventTitle,
		SignerName:     d.SignerName,
		SignerEmail:    d.SignerEmail,
	}
}

func toSignaturesJSON(details []domain.SignatureDetail) []signatureJSON {
	out := make([]signatureJSON, 0, len(details))
	for i := range details {
		out = append(out, toSignatureJSON(&details[i]))
	}
	return out
}

type savedSignatureJSON struct {
	ID            string    `json:"id"`
	SignatureData string    `json:"signatureData"`
	IsDefault     bool      `json:"isDefault"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSavedSignatureJSON(s *domain.SavedSignature) *savedSignatureJSON {
	if s == nil {
		return nil
	}
	return &savedSignatureJSON{ID: s.ID, SignatureData: s.ImageData, IsDefault: s.IsDefault, UpdatedAt: s.UpdatedAt}
}
