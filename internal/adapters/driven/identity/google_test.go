package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
)

type fakeProvider struct {
	userInfo   map[string]any
	userStatus int
}

func (f *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	return mux
}

func setupProvider(t *testing.T, fake *fakeProvider) *Provider {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p, err := New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/oauth/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{ClientID: "id"})

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestNew_DefaultsToGoogle(t *testing.T) {
	p, err := New(Config{ClientID: "id", ClientSecret: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth", p.oauth.Endpoint.AuthURL)
	assert.Equal(t, GoogleUserInfoURL, p.userInfoURL)
}

func TestAuthCodeURL(t *testing.T) {
	p := setupProvider(t, &fakeProvider{})

	raw := p.AuthCodeURL("state-xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/auth/oauth/callback", q.Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	p := setupProvider(t, &fakeProvider{userInfo: map[string]any{
		"sub":            "1089",
		"email":          " Ann@Example.com ",
		"email_verified": true,
		"name":           "Ann Lee",
	}})

	ident, err := p.Exchange(context.Background(), "good-code")

	require.NoError(t, err)
	assert.Equal(t, &domain.ExternalIdentity{Subject: "1089", Email: "ann@example.com", Name: "Ann Lee"}, ident)
}

func TestExchange_BadCode(t *testing.T) {
	p := setupProvider(t, &fakeProvider{})

	_, err := p.Exchange(context.Background(), "bad-code")

	assert.ErrorContains(t, err, "exchange code")
}

func TestExchange_UnverifiedEmail(t *testing.T) {
	p := setupProvider(t, &fakeProvider{userInfo: map[string]any{
		"sub": "1", "email": "x@example.com", "email_verified": false,
	}})

	_, err := p.Exchange(context.Background(), "good-code")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestExchange_UserInfoFailure(t *testing.T) {
	p := setupProvider(t, &fakeProvider{userStatus: http.StatusInternalServerError})

	_, err := p.Exchange(context.Background(), "good-code")

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
