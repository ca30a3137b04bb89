package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/blob"
	"github.com/Zachkp/folio/internal/projects"
)

// brokenBlobs fails every operation with an error naming a server path.
type brokenBlobs struct{}

func (brokenBlobs) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("open /srv/portfolio/data/projects.json: permission denied")
}

func (brokenBlobs) Put(context.Context, string, []byte) error {
	return errors.New("open /srv/portfolio/data/projects.json: permission denied")
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"key":"`+testAdminKey+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token in login response")
	}
	return resp.Token
}

func adminRequest(method, path, token, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestAdminRequiresToken(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())

	for name, req := range map[string]*http.Request{
		"no token":        adminRequest(http.MethodGet, "/admin/api/projects", "", ""),
		"bad token":       adminRequest(http.MethodGet, "/admin/api/projects", "nope", ""),
		"raw key":         adminRequest(http.MethodGet, "/admin/api/projects", testAdminKey, ""),
		"key query param": adminRequest(http.MethodGet, "/admin/api/projects?key="+testAdminKey, "", ""),
		"create":          adminRequest(http.MethodPost, "/admin/api/projects", "", `{"title":"a","description":"b"}`),
		"update":          adminRequest(http.MethodPut, "/admin/api/projects/x", "", `{"title":"a","description":"b"}`),
		"delete":          adminRequest(http.MethodDelete, "/admin/api/projects/x", "", ""),
	} {
		w := do(r, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
		if got := decodeError(t, w); got != "Unauthorized" {
			t.Fatalf("%s: unexpected error %q", name, got)
		}
	}
}

func TestLoginWrongKey(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"key":"guess"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("expected no cookie on failed login")
	}
}

func TestLoginMalformedBody(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"key":`))
	req.Header.Set("Content-Type", "application/json")
	if w := do(r, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCookieSession(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("key="+testAdminKey))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(r, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login: expected redirect to dashboard, got %d %q", w.Code, w.Header().Get("Location"))
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly || session.Path != "/admin" {
		t.Fatalf("expected httpOnly admin cookie, got %+v", session)
	}

	req = adminRequest(http.MethodGet, "/admin/api/projects", "", "")
	req.AddCookie(session)
	if w := do(r, req); w.Code != http.StatusOK {
		t.Fatalf("expected cookie to authorize, got %d", w.Code)
	}

	w = do(r, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected logout to clear the cookie")
	}
}

func TestLoginPage(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())

	w := do(r, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `action="/admin/login"`) || !strings.Contains(body, `name="key"`) {
		t.Fatalf("expected login form, got %s", body)
	}
	if strings.Contains(body, testAdminKey) {
		t.Fatal("login page must not render the admin key")
	}
}

func TestLoginFormWrongKey(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader("key=nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(r, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatalf("expected login form with error, got %s", w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			t.Fatalf("expected no session cookie, got %+v", c)
		}
	}
}

func TestDashboard(t *testing.T) {
	s, r := newTestSite(t, blob.NewMemory())
	if _, err := s.projects.Create(context.Background(), projects.Fields{Title: "Terminal Mail", Description: "A TUI email client"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := do(r, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: login(t, r)})
	w = do(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Terminal Mail") {
		t.Fatalf("expected project listed, got %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = do(r, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected logout form to redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestDashboardStorageFailure(t *testing.T) {
	_, r := newTestSite(t, brokenBlobs{})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: login(t, r)})
	w := do(r, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "/srv/portfolio") {
		t.Fatalf("storage cause leaked: %s", w.Body.String())
	}
}

func TestAdminProjectLifecycle(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())
	token := login(t, r)

	w := do(r, adminRequest(http.MethodPost, "/admin/api/projects", token,
		`{"title":"Tunes","description":"Terminal music","githubUrl":"https://github.com/x/tunes","techStack":"Go"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var created projects.Project
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if !strings.HasPrefix(created.ID, "project-") || created.Title != "Tunes" || created.TechStack != "Go" {
		t.Fatalf("unexpected created project %#v", created)
	}

	w = do(r, adminRequest(http.MethodGet, "/admin/api/projects", token, ""))
	var list []projects.Project
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if w.Code != http.StatusOK || len(list) != 1 || list[0] != created {
		t.Fatalf("unexpected list %d %#v", w.Code, list)
	}

	w = do(r, adminRequest(http.MethodPut, "/admin/api/projects/"+created.ID, token,
		`{"id":"ignored","title":"Tunes 2","description":"Now with playlists"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d %s", w.Code, w.Body.String())
	}
	var updated projects.Project
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	want := projects.Project{ID: created.ID, Title: "Tunes 2", Description: "Now with playlists"}
	if updated != want {
		t.Fatalf("expected %#v, got %#v", want, updated)
	}

	w = do(r, adminRequest(http.MethodDelete, "/admin/api/projects/"+created.ID, token, ""))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Fatalf("delete: unexpected response %d %s", w.Code, w.Body.String())
	}

	w = do(r, adminRequest(http.MethodDelete, "/admin/api/projects/"+created.ID, token, ""))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
}

func TestAdminErrorMapping(t *testing.T) {
	_, r := newTestSite(t, blob.NewMemory())
	token := login(t, r)

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		message string
	}{
		{
			name:    "missing title",
			req:     adminRequest(http.MethodPost, "/admin/api/projects", token, `{"title":"","description":"x"}`),
			status:  http.StatusBadRequest,
			message: "title: required",
		},
		{
			name:    "invalid github url",
			req:     adminRequest(http.MethodPost, "/admin/api/projects", token, `{"title":"a","description":"b","githubUrl":"github.com/x"}`),
			status:  http.StatusBadRequest,
			message: "githubUrl: must be an absolute URL",
		},
		{
			name:    "malformed json",
			req:     adminRequest(http.MethodPost, "/admin/api/projects", token, `{"title":`),
			status:  http.StatusBadRequest,
			message: "Invalid request body",
		},
		{
			name:    "update missing",
			req:     adminRequest(http.MethodPut, "/admin/api/projects/project-1", token, `{"title":"a","description":"b"}`),
			status:  http.StatusNotFound,
			message: "Project not found",
		},
		{
			name:    "delete missing",
			req:     adminRequest(http.MethodDelete, "/admin/api/projects/project-1", token, ""),
			status:  http.StatusNotFound,
			message: "Project not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d %s", tt.status, w.Code, w.Body.String())
			}
			if got := decodeError(t, w); got != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, got)
			}
		})
	}
}

func TestAdminStorageFailureHidesCause(t *testing.T) {
	_, r := newTestSite(t, brokenBlobs{})
	token := login(t, r)

	for _, req := range []*http.Request{
		adminRequest(http.MethodGet, "/admin/api/projects", token, ""),
		adminRequest(http.MethodPost, "/admin/api/projects", token, `{"title":"a","description":"b"}`),
		adminRequest(http.MethodDelete, "/admin/api/projects/x", token, ""),
	} {
		w := do(r, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", req.Method, req.URL.Path, w.Code)
		}
		if strings.Contains(w.Body.String(), "/srv/portfolio") {
			t.Fatalf("response leaked storage path: %s", w.Body.String())
		}
	}
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"":             "",
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearerabc":    "",
		"Bearer":       "",
	} {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
