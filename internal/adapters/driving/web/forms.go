package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// inputDateLayout is the value format of datetime-local inputs.
const inputDateLayout = "2006-01-02T15:04"

// fieldPrefix namespaces waiver answers in the signing form.
const fieldPrefix = "field:"

var dateLayouts = []string{time.RFC3339, inputDateLayout, "2006-01-02"}

// parseDate accepts RFC 3339, datetime-local and plain dates.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.Invalid(field, "is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.Invalid(field, "is not a valid date")
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// eventForm reads an event and its optional waiver from a multipart form.
// The waiver is attached only when waiverTitle is set.
func (s *Server) eventForm(w http.ResponseWriter, r *http.Request) (domain.EventInput, *domain.WaiverInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.EventInput{}, nil, domain.Invalid("", fmt.Sprintf("malformed form: %v", err))
	}

	start, err := parseDate("startDate", r.FormValue("startDate"))
	if err != nil {
		return domain.EventInput{}, nil, err
	}
	end, err := parseOptionalDate("endDate", r.FormValue("endDate"))
	if err != nil {
		return domain.EventInput{}, nil, err
	}
	input := domain.EventInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		StartDate:   start,
		EndDate:     end,
	}

	title := strings.TrimSpace(r.FormValue("waiverTitle"))
	if title == "" {
		return input, nil, nil
	}
	waiver := &domain.WaiverInput{Title: title, Content: r.FormValue("waiverContent")}

	file, header, err := r.FormFile("waiverFile")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return input, waiver, nil
	case err != nil:
		return domain.EventInput{}, nil, domain.Invalid("waiverFile", err.Error())
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.EventInput{}, nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > 0 {
		waiver.Document = &domain.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return input, waiver, nil
}

// eventPatchForm reads the admin edit form. Every field is submitted, so
// each becomes part of the patch.
func eventPatchForm(r *http.Request) (domain.EventPatch, error) {
	if err := r.ParseForm(); err != nil {
		return domain.EventPatch{}, domain.Invalid("", "malformed form")
	}
	title := r.PostFormValue("title")
	description := r.PostFormValue("description")
	location := r.PostFormValue("location")
	active := r.PostFormValue("isActive") != ""

	patch := domain.EventPatch{
		Title:       &title,
		Description: &description,
		Location:    &location,
		IsActive:    &active,
	}
	start, err := parseDate("startDate", r.PostFormValue("startDate"))
	if err != nil {
		return domain.EventPatch{}, err
	}
	patch.StartDate = &start

	end, err := parseOptionalDate("endDate", r.PostFormValue("endDate"))
	if err != nil {
		return domain.EventPatch{}, err
	}
	if end == nil {
		patch.ClearEnd = true
	} else {
		patch.EndDate = end
	}
	return patch, nil
}

// eventPatchJSON is the PATCH body. Absent keys leave fields unchanged;
// an empty endDate clears it.
type eventPatchJSON struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	IsActive    *bool   `json:"isActive"`
}

func (p eventPatchJSON) patch() (domain.EventPatch, error) {
	patch := domain.EventPatch{
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		IsActive:    p.IsActive,
	}
	if p.StartDate != nil {
		start, err := parseDate("startDate", *p.StartDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		patch.StartDate = &start
	}
	if p.EndDate != nil {
		end, err := parseOptionalDate("endDate", *p.EndDate)
		if err != nil {
			return domain.EventPatch{}, err
		}
		if end == nil {
			patch.ClearEnd = true
		} else {
			patch.EndDate = end
		}
	}
	return patch, nil
}

// answers collects the prefixed waiver fields of a signing form. Several
// PDF fields can classify to the same name; their non-empty values are
// joined in form order.
func answers(r *http.Request) map[string]string {
	out := make(map[string]string)
	for key, values := range r.PostForm {
		name, ok := strings.CutPrefix(key, fieldPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				kept = append(kept, v)
			}
		}
		out[name] = strings.Join(kept, "; ")
	}
	return out
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
