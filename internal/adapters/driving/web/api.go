package web

import (
	"net/http"
	"strings"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

// ==================== Public ====================

func (s *Server) apiHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Health.Check(r.Context()))
}

func (s *Server) apiAdminSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		ClubName string `json:"clubName"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.svc.Auth.RegisterAdmin(r.Context(), domain.AdminSignup{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		ClubName: body.ClubName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Admin account created successfully",
		"user":    toUserJSON(user),
	})
}

// ==================== Participant ====================

func (s *Server) apiGetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Signing.Prepare(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":          toEventJSON(view.Event),
		"waiver":         toWaiverJSON(view.Waiver),
		"hasSigned":      view.State == domain.StateSigned,
		"savedSignature": toSavedSignatureJSON(view.SavedSign),
	})
}

func (s *Server) apiSign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SignatureStyle string            `json:"signatureStyle"`
		SignatureData  string            `json:"signatureData"`
		FormData       map[string]string `json:"formData"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.Signing.Sign(r.Context(), domain.SignRequest{
		SignerID:  currentUser(r).ID,
		EventID:   r.PathValue("id"),
		Style:     domain.SignatureStyle(strings.ToLower(strings.TrimSpace(body.SignatureStyle))),
		ImageData: body.SignatureData,
		FormData:  body.FormData,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		status, msg := signStatus(err)
		logFailure(r, status, err)
		writeErrorStatus(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"signatureId":    result.SignatureID,
		"documentStored": result.ArtifactStored,
	})
}

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.Dashboard.ForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":        toSummariesJSON(dash.Events),
		"signedWaivers": toSignaturesJSON(dash.Signatures),
	})
}

func (s *Server) apiGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	user, err := s.svc.Profile.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.svc.Profile.SavedSignature(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"clubName":  user.ClubName,
		"role":      user.Role,
		"signature": toSavedSignatureJSON(saved),
	})
}

func (s *Server) apiUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		ClubName        string `json:"clubName"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.NewPassword != "" && body.NewPassword != body.ConfirmPassword {
		writeErrorStatus(w, http.StatusBadRequest, "New passwords do not match")
		return
	}

	user, err := s.svc.Profile.Update(r.Context(), currentUser(r).ID, domain.ProfilePatch{
		Name:            body.Name,
		Email:           body.Email,
		ClubName:        body.ClubName,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserJSON(user),
	})
}

func (s *Server) apiSaveSignature(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SignatureData string `json:"signatureData"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(body.SignatureData) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "Signature data required")
		return
	}

	saved, err := s.svc.Profile.SaveSignature(r.Context(), currentUser(r).ID, body.SignatureData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Signature saved successfully",
		"signature": toSavedSignatureJSON(saved),
	})
}

func (s *Server) apiWaiverFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.svc.Ingestion.Fields(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

// ==================== Admin ====================

func (s *Server) apiReparseWaiver(w http.ResponseWriter, r *http.Request) {
	fields, err := s.svc.Ingestion.Reparse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

func (s *Server) apiSignedDocument(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Admin.SignedDocumentURL(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) apiCreateEvent(w http.ResponseWriter, r *http.Request) {
	input, waiver, err := s.eventForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.svc.Events.Create(r.Context(), currentUser(r).ID, input, waiver)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": toSummaryJSON(summary)})
}

func (s *Server) apiGetAdminEvent(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": toSummaryJSON(summary)})
}

func (s *Server) apiUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var body eventPatchJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := body.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	event, err := s.svc.Events.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": toEventJSON(event)})
}

func (s *Server) apiDeleteEvent(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Events.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Event deleted successfully",
		"deletedS3Files": result.DeletedObjects,
	})
}
