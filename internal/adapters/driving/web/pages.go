package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/services"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// pageData is passed to every page template.
type pageData struct {
	Title  string
	User   *domain.User
	Error  string
	Notice string
	OAuth  bool
	Form   url.Values
	Data   any
}

// fieldGroup is a titled block of the signing form.
type fieldGroup struct {
	Group  domain.FieldGroup
	Fields []domain.FormField
}

func orderedGroups(fields []domain.FormField) []fieldGroup {
	grouped := domain.GroupFields(fields)
	var out []fieldGroup
	for _, g := range domain.FieldGroups {
		if fs := grouped[g]; len(fs) > 0 {
			out = append(out, fieldGroup{Group: g, Fields: fs})
		}
	}
	return out
}

func (s *Server) page(r *http.Request, title string, data any) pageData {
	return pageData{
		Title: title,
		User:  currentUser(r),
		OAuth: s.svc.Auth.OAuthEnabled(),
		Data:  data,
	}
}

// render writes the page with status. The status is only sent once the
// template has executed; a failed render becomes a plain 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.render(&buf, name, data); err != nil {
		logger.With("page", name, "path", r.URL.Path).Errorf("render failed: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows the error page with the mapped status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logFailure(r, status, err)
	data := s.page(r, http.StatusText(status), nil)
	data.Error = messageFor(err)
	s.render(w, r, status, "error", data)
}

// renderForm re-renders a form page with the submitted values and an error.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, name string, data pageData, err error) {
	status := statusFor(err)
	logFailure(r, status, err)
	data.Error = messageFor(err)
	data.Form = r.PostForm
	s.render(w, r, status, name, data)
}

// ==================== Accounts ====================

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	switch u := currentUser(r); {
	case u.IsAdmin():
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case u != nil:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		s.render(w, r, http.StatusOK, "home", s.page(r, "Digital waivers", nil))
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != nil {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next"), "/"), http.StatusSeeOther)
		return
	}
	data := s.page(r, "Sign in", nil)
	data.Form = url.Values{"next": {r.URL.Query().Get("next")}}
	if r.URL.Query().Get("error") != "" {
		data.Error = "Sign-in with your provider failed"
	}
	s.render(w, r, http.StatusOK, "login", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, domain.Invalid("", "malformed form"))
		return
	}
	session, err := s.svc.Auth.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			err = domain.Invalid("", "invalid email or password")
		}
		s.renderForm(w, r, "login", s.page(r, "Sign in", nil), err)
		return
	}
	s.setSessionCookie(w, session)
	http.Redirect(w, r, safeNext(r.PostFormValue("next"), "/"), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if err := s.svc.Auth.Logout(r.Context(), c.Value); err != nil {
			logger.Warn("logout: %v", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Create account", nil)
	data.Form = url.Values{"next": {r.URL.Query().Get("next")}}
	s.render(w, r, http.StatusOK, "register", data)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, domain.Invalid("", "malformed form"))
		return
	}
	email, password := r.PostFormValue("email"), r.PostFormValue("password")
	if _, err := s.svc.Auth.Register(r.Context(), email, password, r.PostFormValue("name")); err != nil {
		s.renderForm(w, r, "register", s.page(r, "Create account", nil), err)
		return
	}
	s.signInAfterSignup(w, r, email, password, safeNext(r.PostFormValue("next"), "/dashboard"))
}

func (s *Server) handleAdminSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "admin_signup", s.page(r, "Create admin account", nil))
}

func (s *Server) handleAdminSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, domain.Invalid("", "malformed form"))
		return
	}
	signup := domain.AdminSignup{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Name:     r.PostFormValue("name"),
		ClubName: r.PostFormValue("clubName"),
	}
	if _, err := s.svc.Auth.RegisterAdmin(r.Context(), signup); err != nil {
		s.renderForm(w, r, "admin_signup", s.page(r, "Create admin account", nil), err)
		return
	}
	s.signInAfterSignup(w, r, signup.Email, signup.Password, "/admin")
}

func (s *Server) signInAfterSignup(w http.ResponseWriter, r *http.Request, email, password, next string) {
	session, err := s.svc.Auth.Login(r.Context(), email, password)
	if err != nil {
		logger.Warn("sign-in after signup failed: %v", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.setSessionCookie(w, session)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// ==================== OAuth ====================

func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := services.GenerateState()
	if err != nil {
		s.renderError(w, r, fmt.Errorf("generate state: %w", err))
		return
	}
	authURL, err := s.svc.Auth.OAuthURL(state)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/oauth", MaxAge: -1})

	if e := q.Get("error"); e != "" {
		logger.Warn("oauth provider returned error: %s %s", e, q.Get("error_description"))
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}
	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		s.renderError(w, r, fmt.Errorf("oauth state mismatch: %w", domain.ErrUnauthorized))
		return
	}

	session, err := s.svc.Auth.OAuthLogin(r.Context(), q.Get("code"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ==================== Participant ====================

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, err := s.svc.Events.Get(r.Context(), id)
	if err == nil && (!summary.IsActive || summary.Waiver == nil) {
		err = fmt.Errorf("event %s not open for signing: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if currentUser(r) != nil {
		http.Redirect(w, r, signPath(id), http.StatusSeeOther)
		return
	}
	data := s.page(r, summary.Title, summary)
	data.Form = url.Values{"next": {signPath(id)}}
	s.render(w, r, http.StatusOK, "join", data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.Dashboard.ForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data := s.page(r, "Dashboard", dash)
	if r.URL.Query().Get("signed") != "" {
		data.Notice = "Waiver signed. Thank you!"
	}
	s.render(w, r, http.StatusOK, "dashboard", data)
}

// signPage is the data of the signing page.
type signPage struct {
	View   *domain.SigningView
	Groups []fieldGroup
	Styles []domain.SignatureStyle
}

func (s *Server) signPageData(r *http.Request, view *domain.SigningView) pageData {
	var fields []domain.FormField
	if view.Waiver != nil {
		fields = view.Waiver.Fields
	}
	return s.page(r, view.Event.Title, signPage{
		View:   view,
		Groups: orderedGroups(fields),
		Styles: domain.SignatureStyles,
	})
}

func (s *Server) handleSignPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Signing.Prepare(r.Context(), currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "sign", s.signPageData(r, view))
}

func (s *Server) handleSignSubmit(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	eventID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, domain.Invalid("", "malformed form"))
		return
	}

	imageData := r.PostFormValue("signatureData")
	if imageData == "" && r.PostFormValue("useSaved") != "" {
		saved, err := s.svc.Profile.SavedSignature(r.Context(), user.ID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if saved != nil {
			imageData = saved.ImageData
		}
	}

	_, err := s.svc.Signing.Sign(r.Context(), domain.SignRequest{
		SignerID:  user.ID,
		EventID:   eventID,
		Style:     domain.SignatureStyle(r.PostFormValue("signatureStyle")),
		ImageData: imageData,
		FormData:  answers(r),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err == nil {
		http.Redirect(w, r, "/dashboard?signed="+url.QueryEscape(eventID), http.StatusSeeOther)
		return
	}

	status, msg := signStatus(err)
	logFailure(r, status, err)
	view, prepErr := s.svc.Signing.Prepare(r.Context(), user.ID, eventID)
	if prepErr != nil {
		s.renderError(w, r, prepErr)
		return
	}
	data := s.signPageData(r, view)
	data.Error = msg
	data.Form = r.PostForm
	s.render(w, r, status, "sign", data)
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	s.renderProfile(w, r, http.StatusOK, "", "")
}

// profilePage is the data of the profile page.
type profilePage struct {
	Profile *domain.User
	Saved   *domain.SavedSignature
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, status int, notice, errMsg string) {
	userID := currentUser(r).ID
	user, err := s.svc.Profile.Get(r.Context(), userID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	saved, err := s.svc.Profile.SavedSignature(r.Context(), userID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data := s.page(r, "Profile", profilePage{Profile: user, Saved: saved})
	data.Notice = notice
	data.Error = errMsg
	s.render(w, r, status, "profile", data)
}

func (s *Server) handleProfileSubmit(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, domain.Invalid("", "malformed form"))
		return
	}

	newPassword := r.PostFormValue("newPassword")
	if newPassword != "" && newPassword != r.PostFormValue("confirmPassword") {
		s.renderProfile(w, r, http.StatusBadRequest, "", "New passwords do not match")
		return
	}

	_, err := s.svc.Profile.Update(r.Context(), userID, domain.ProfilePatch{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		ClubName:        r.PostFormValue("clubName"),
		CurrentPassword: r.PostFormValue("currentPassword"),
		NewPassword:     newPassword,
	})
	if err == nil {
		if sig := strings.TrimSpace(r.PostFormValue("signatureData")); sig != "" {
			_, err = s.svc.Profile.SaveSignature(r.Context(), userID, sig)
		}
	}
	if err != nil {
		status := statusFor(err)
		logFailure(r, status, err)
		s.renderProfile(w, r, status, "", messageFor(err))
		return
	}
	s.renderProfile(w, r, http.StatusOK, "Profile updated", "")
}

// ==================== Admin ====================

func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.svc.Admin.Overview(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data := s.page(r, "Events", overview)
	if n := r.URL.Query().Get("deleted"); n != "" {
		data.Notice = fmt.Sprintf("Event deleted (%s stored documents removed)", n)
	}
	s.render(w, r, http.StatusOK, "admin", data)
}

func (s *Server) handleNewEventPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "event_new", s.page(r, "New event", nil))
}

func (s *Server) handleNewEventSubmit(w http.ResponseWriter, r *http.Request) {
	input, waiver, err := s.eventForm(w, r)
	if err == nil {
		var summary *domain.EventSummary
		if summary, err = s.svc.Events.Create(r.Context(), currentUser(r).ID, input, waiver); err == nil {
			http.Redirect(w, r, "/admin/events/"+url.PathEscape(summary.ID), http.StatusSeeOther)
			return
		}
	}
	s.renderForm(w, r, "event_new", s.page(r, "New event", nil), err)
}

// adminEventPage is the data of the admin event page.
type adminEventPage struct {
	Detail  *domain.EventDetail
	JoinURL string
}

func (s *Server) handleAdminEvent(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Admin.EventDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_event", s.page(r, detail.Title, adminEventPage{
		Detail:  detail,
		JoinURL: s.joinURL(detail.ID),
	}))
}

func (s *Server) handleEditEventPage(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "event_edit", s.page(r, "Edit "+summary.Title, summary))
}

func (s *Server) handleEditEventSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	patch, err := eventPatchForm(r)
	if err == nil {
		if _, err = s.svc.Events.Update(r.Context(), id, patch); err == nil {
			http.Redirect(w, r, "/admin/events/"+url.PathEscape(id), http.StatusSeeOther)
			return
		}
	}
	summary, getErr := s.svc.Events.Get(r.Context(), id)
	if getErr != nil {
		s.renderError(w, r, getErr)
		return
	}
	s.renderForm(w, r, "event_edit", s.page(r, "Edit "+summary.Title, summary), err)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Events.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin?deleted=%d", result.DeletedObjects), http.StatusSeeOther)
}

func (s *Server) handleSignedDocument(w http.ResponseWriter, r *http.Request) {
	docURL, err := s.svc.Admin.SignedDocumentURL(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, docURL, http.StatusFound)
}

func (s *Server) joinURL(eventID string) string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + "/join/" + url.PathEscape(eventID)
}

func signPath(eventID string) string {
	return "/events/" + url.PathEscape(eventID) + "/sign"
}
