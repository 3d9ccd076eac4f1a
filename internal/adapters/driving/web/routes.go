package web

import "net/http"

func (s *Server) routes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.throttle(s.handleLogin))
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.throttle(s.handleRegister))
	mux.HandleFunc("GET /admin/signup", s.handleAdminSignupPage)
	mux.HandleFunc("POST /admin/signup", s.throttle(s.handleAdminSignup))
	mux.HandleFunc("GET /join/{id}", s.handleJoin)
	mux.HandleFunc("GET /dashboard", requireUser(s.handleDashboard))
	mux.HandleFunc("GET /events/{id}/sign", requireUser(s.handleSignPage))
	mux.HandleFunc("POST /events/{id}/sign", requireUser(s.throttle(s.handleSignSubmit)))
	mux.HandleFunc("GET /profile", requireUser(s.handleProfilePage))
	mux.HandleFunc("POST /profile", requireUser(s.handleProfileSubmit))

	mux.HandleFunc("GET /admin", requireAdmin(s.handleAdminOverview))
	mux.HandleFunc("GET /admin/events/new", requireAdmin(s.handleNewEventPage))
	mux.HandleFunc("POST /admin/events/new", requireAdmin(s.handleNewEventSubmit))
	mux.HandleFunc("GET /admin/events/{id}", requireAdmin(s.handleAdminEvent))
	mux.HandleFunc("GET /admin/events/{id}/edit", requireAdmin(s.handleEditEventPage))
	mux.HandleFunc("POST /admin/events/{id}/edit", requireAdmin(s.handleEditEventSubmit))
	mux.HandleFunc("POST /admin/events/{id}/delete", requireAdmin(s.handleDeleteEvent))
	mux.HandleFunc("GET /admin/signatures/{id}/document", requireAdmin(s.handleSignedDocument))

	mux.HandleFunc("GET /auth/oauth/start", s.handleOAuthStart)
	mux.HandleFunc("GET /auth/oauth/callback", s.throttle(s.handleOAuthCallback))

	// JSON API
	mux.HandleFunc("GET /api/health", s.apiHealth)
	mux.HandleFunc("POST /api/auth/admin-signup", s.throttle(s.apiAdminSignup))
	mux.HandleFunc("GET /api/events/{id}", requireUser(s.apiGetEvent))
	mux.HandleFunc("POST /api/events/{id}/sign", requireUser(s.throttle(s.apiSign)))
	mux.HandleFunc("GET /api/dashboard", requireUser(s.apiDashboard))
	mux.HandleFunc("GET /api/user/profile", requireUser(s.apiGetProfile))
	mux.HandleFunc("PUT /api/user/profile", requireUser(s.apiUpdateProfile))
	mux.HandleFunc("POST /api/user/signature", requireUser(s.apiSaveSignature))
	mux.HandleFunc("GET /api/waivers/{id}/fields", requireUser(s.apiWaiverFields))

	mux.HandleFunc("GET /api/admin/waivers/{id}/parse", requireAdmin(s.apiReparseWaiver))
	mux.HandleFunc("GET /api/admin/signed-waivers/{id}", requireAdmin(s.apiSignedDocument))
	mux.HandleFunc("POST /api/admin/events", requireAdmin(s.apiCreateEvent))
	mux.HandleFunc("GET /api/admin/events/{id}", requireAdmin(s.apiGetAdminEvent))
	mux.HandleFunc("PATCH /api/admin/events/{id}", requireAdmin(s.apiUpdateEvent))
	mux.HandleFunc("DELETE /api/admin/events/{id}", requireAdmin(s.apiDeleteEvent))
}
