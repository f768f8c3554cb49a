package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"esk/training-app/internal/api"
	"esk/training-app/internal/config"
	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository/postgres"
	"esk/training-app/internal/service"
	"esk/training-app/internal/storage"
	"esk/training-app/internal/testutil"
	"esk/training-app/web"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testServer struct {
	*httptest.Server
	auth service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewDB(t)
	files, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	cfg := config.Config{
		App:     config.AppConfig{Env: "test"},
		Session: config.SessionConfig{Secret: "test-secret", CookieName: "esk.sid", MaxAge: time.Hour},
		Upload:  config.UploadConfig{MaxBytes: 1 << 20},
	}

	tx := postgres.NewTransactor(db)
	users := postgres.NewUserRepository(db)
	sessions := postgres.NewSessionRepository(db)
	invites := postgres.NewInviteRepository(db)

	auth := service.NewAuthService(tx, users, invites, sessions, service.AuthOptions{
		BcryptCost: bcrypt.MinCost,
		SessionTTL: time.Hour,
	}, logger)
	svc := api.Services{
		Auth:     auth,
		Users:    service.NewUserService(tx, users, sessions),
		Invites:  service.NewInviteService(invites),
		Training: service.NewTrainingService(postgres.NewTrainingRepository(db)),
		Exercise: service.NewExerciseService(postgres.NewExerciseRepository(db)),
		Upload:   service.NewUploadService(files, postgres.NewUploadRepository(db), cfg.Upload.MaxBytes, logger),
	}

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	var static fs.FS = web.Static()

	router := api.NewRouter(cfg, logger, svc, api.Assets{Templates: tmpl, Static: static})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	if _, err := auth.EnsureBootstrapInvite(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return &testServer{Server: srv, auth: auth}
}

// client returns an HTTP client with its own cookie jar that does not follow
// redirects.
func (s *testServer) client(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *testServer) do(t *testing.T, c *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, c, req)
}

func (s *testServer) send(t *testing.T, c *http.Client, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (s *testServer) register(t *testing.T, c *http.Client, name, email, code string) domain.PublicUser {
	t.Helper()
	resp, body := s.do(t, c, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": "secret123", "inviteCode": code,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, resp.StatusCode, body)
	}
	var out struct {
		User domain.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	return out.User
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("not an error body: %s", body)
	}
	return out.Error
}

// newAdminAndMember registers the first user through the bootstrap invite and
// a second one through an invite the admin creates.
func newAdminAndMember(t *testing.T, s *testServer) (admin, member *http.Client) {
	t.Helper()
	admin = s.client(t)
	if u := s.register(t, admin, "Coach", "coach@example.com", domain.BootstrapInviteCode); u.Role != domain.RoleAdmin {
		t.Fatalf("first user should be admin, got %s", u.Role)
	}

	resp, body := s.do(t, admin, http.MethodPost, "/api/invites", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invite: %d %s", resp.StatusCode, body)
	}
	var inv domain.Invite
	if err := json.Unmarshal(body, &inv); err != nil {
		t.Fatal(err)
	}

	member = s.client(t)
	if u := s.register(t, member, "Player", "player@example.com", inv.Code); u.Role != domain.RoleUser {
		t.Fatalf("second user should be a plain user, got %s", u.Role)
	}
	return admin, member
}

func TestPingHasTraceID(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, s.client(t), http.MethodGet, "/ping", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "pong") {
		t.Fatalf("unexpected ping response %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Trace-ID") == "" {
		t.Error("missing X-Trace-ID header")
	}
}

func TestGuardResponses(t *testing.T) {
	s := newTestServer(t)
	anon := s.client(t)
	admin, member := newAdminAndMember(t, s)

	tests := []struct {
		name     string
		client   *http.Client
		method   string
		path     string
		status   int
		location string
		message  string
	}{
		{"anonymous api", anon, http.MethodGet, "/api/trainings", http.StatusUnauthorized, "", "Not logged in"},
		{"anonymous page", anon, http.MethodGet, "/", http.StatusFound, "/login", ""},
		{"anonymous admin page", anon, http.MethodGet, "/admin", http.StatusFound, "/login", ""},
		{"member reads", member, http.MethodGet, "/api/trainings", http.StatusOK, "", ""},
		{"member writes", member, http.MethodPost, "/api/trainings", http.StatusForbidden, "", "Admin access required"},
		{"member admin api", member, http.MethodGet, "/api/users", http.StatusForbidden, "", "Admin access required"},
		{"member admin page", member, http.MethodGet, "/admin", http.StatusFound, "/", ""},
		{"member calendar", member, http.MethodGet, "/", http.StatusOK, "", ""},
		{"logged in login page", member, http.MethodGet, "/login", http.StatusFound, "/", ""},
		{"admin page", admin, http.MethodGet, "/admin", http.StatusOK, "", ""},
		{"admin users", admin, http.MethodGet, "/api/users", http.StatusOK, "", ""},
		{"anonymous login page", anon, http.MethodGet, "/login", http.StatusOK, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := s.do(t, tc.client, tc.method, tc.path, nil)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d %s", tc.status, resp.StatusCode, body)
			}
			if tc.location != "" && resp.Header.Get("Location") != tc.location {
				t.Errorf("expected redirect to %s, got %q", tc.location, resp.Header.Get("Location"))
			}
			if tc.message != "" && errorMessage(t, body) != tc.message {
				t.Errorf("unexpected error %q", errorMessage(t, body))
			}
		})
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := s.do(t, c, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "X", "email": "x@example.com", "password": "secret123", "inviteCode": "NOPE",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad invite, got %d %s", resp.StatusCode, body)
	}

	resp, body = s.do(t, c, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "X", "email": "x@example.com", "password": strings.Repeat("p", 80), "inviteCode": domain.BootstrapInviteCode,
	})
	if resp.StatusCode != http.StatusBadRequest || errorMessage(t, body) != service.ErrPasswordTooLong.Error() {
		t.Fatalf("expected 400 for an over-long password, got %d %s", resp.StatusCode, body)
	}

	s.register(t, c, "Coach", "Coach@Example.com", domain.BootstrapInviteCode)

	resp, body = s.do(t, c, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: %d %s", resp.StatusCode, body)
	}
	var me domain.PublicUser
	_ = json.Unmarshal(body, &me)
	if me.Email != "coach@example.com" || me.Role != domain.RoleAdmin {
		t.Errorf("unexpected identity %+v", me)
	}
	if strings.Contains(string(body), "password") {
		t.Error("password hash leaked")
	}

	resp, _ = s.do(t, c, http.MethodPost, "/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = s.do(t, c, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp, _ = s.do(t, c, http.MethodPost, "/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("second logout should succeed, got %d", resp.StatusCode)
	}

	resp, body = s.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{"email": "coach@example.com", "password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d %s", resp.StatusCode, body)
	}
	resp, body = s.do(t, c, http.MethodPost, "/api/auth/login", map[string]string{"email": "COACH@example.com", "password": "secret123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}
	resp, _ = s.do(t, c, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected session after login, got %d", resp.StatusCode)
	}
}

func TestExerciseCRUD(t *testing.T) {
	s := newTestServer(t)
	admin, member := newAdminAndMember(t, s)

	resp, body := s.do(t, admin, http.MethodPost, "/api/exercises", map[string]any{
		"name":       "Rondo",
		"images":     []string{"/uploads/images/1-a.png"},
		"youtubeUrl": "https://youtu.be/abc",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var ex domain.Exercise
	_ = json.Unmarshal(body, &ex)

	resp, body = s.do(t, admin, http.MethodPut, "/api/exercises/"+ex.ID, map[string]any{"youtubeUrl": nil})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
	var updated domain.Exercise
	_ = json.Unmarshal(body, &updated)
	if updated.YoutubeURL != nil || updated.Name != "Rondo" || len(updated.Images) != 1 {
		t.Errorf("unexpected patch result %+v", updated)
	}

	resp, body = s.do(t, member, http.MethodGet, "/api/exercises", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s", resp.StatusCode, body)
	}
	var list []domain.Exercise
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 {
		t.Errorf("expected one exercise, got %d", len(list))
	}

	for i := 0; i < 2; i++ {
		resp, body = s.do(t, admin, http.MethodDelete, "/api/exercises/"+ex.ID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete #%d: %d %s", i+1, resp.StatusCode, body)
		}
	}
	resp, body = s.do(t, member, http.MethodGet, "/api/exercises/"+ex.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d %s", resp.StatusCode, body)
	}
}

func TestTrainingCRUD(t *testing.T) {
	s := newTestServer(t)
	admin, _ := newAdminAndMember(t, s)

	resp, body := s.do(t, admin, http.MethodPost, "/api/trainings", map[string]any{
		"date": "2025-03-01", "time": "18:00", "location": "Main pitch", "exerciseIds": []string{"e1"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var tr domain.Training
	_ = json.Unmarshal(body, &tr)

	resp, body = s.do(t, admin, http.MethodPut, "/api/trainings/"+tr.ID, map[string]any{"time": "19:00"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
	var updated domain.Training
	_ = json.Unmarshal(body, &updated)
	if updated.Time != "19:00" || updated.Location != "Main pitch" || len(updated.ExerciseIDs) != 1 {
		t.Errorf("unexpected update result %+v", updated)
	}

	resp, _ = s.do(t, admin, http.MethodPut, "/api/trainings/missing", map[string]any{"time": "19:00"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	resp, _ = s.do(t, admin, http.MethodPost, "/api/trainings", "not an object")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad body, got %d", resp.StatusCode)
	}
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin, member := newAdminAndMember(t, s)

	resp, body := s.do(t, admin, http.MethodGet, "/api/users", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list users: %d %s", resp.StatusCode, body)
	}
	var users []domain.PublicUser
	_ = json.Unmarshal(body, &users)
	if len(users) != 2 {
		t.Fatalf("expected two users, got %d", len(users))
	}
	var adminID, memberID string
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			adminID = u.ID
		} else {
			memberID = u.ID
		}
	}

	resp, body = s.do(t, admin, http.MethodPut, "/api/users/"+adminID+"/role", map[string]string{"role": "user"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected self demotion to fail, got %d %s", resp.StatusCode, body)
	}
	resp, body = s.do(t, admin, http.MethodDelete, "/api/users/"+adminID, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected self deletion to fail, got %d %s", resp.StatusCode, body)
	}

	resp, body = s.do(t, admin, http.MethodDelete, "/api/users/"+memberID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete member: %d %s", resp.StatusCode, body)
	}
	resp, _ = s.do(t, member, http.MethodGet, "/api/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("deleted user must lose their session, got %d", resp.StatusCode)
	}
	resp, _ = s.do(t, admin, http.MethodDelete, "/api/users/"+memberID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a missing user, got %d", resp.StatusCode)
	}
}

func multipartRequest(t *testing.T, url, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAndServe(t *testing.T) {
	s := newTestServer(t)
	admin, member := newAdminAndMember(t, s)

	resp, body := s.send(t, admin, multipartRequest(t, s.URL+"/api/upload", "notes.pdf", "application/pdf", []byte("%PDF-1.4")))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected pdf rejected, got %d %s", resp.StatusCode, body)
	}

	resp, body = s.send(t, member, multipartRequest(t, s.URL+"/api/upload", "a.png", "image/png", pngBytes))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected members to be refused, got %d %s", resp.StatusCode, body)
	}

	resp, body = s.send(t, admin, multipartRequest(t, s.URL+"/api/upload", "My Drill.png", "", pngBytes))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: %d %s", resp.StatusCode, body)
	}
	var up api.UploadResponse
	_ = json.Unmarshal(body, &up)
	if up.Type != "image" || !strings.HasPrefix(up.Path, "/uploads/images/") || !strings.HasSuffix(up.Path, "-My_Drill.png") {
		t.Fatalf("unexpected upload response %+v", up)
	}

	// uploads are public by path
	resp, body = s.do(t, s.client(t), http.MethodGet, up.Path, nil)
	if resp.StatusCode != http.StatusOK || !bytes.Equal(body, pngBytes) {
		t.Fatalf("serve: %d, %d bytes", resp.StatusCode, len(body))
	}
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	resp, _ = s.do(t, s.client(t), http.MethodGet, "/uploads/images/missing.png", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a missing file, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/api/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp, body = s.send(t, admin, req)
	if resp.StatusCode != http.StatusBadRequest || errorMessage(t, body) != service.ErrMissingFile.Error() {
		t.Errorf("expected missing file error, got %d %s", resp.StatusCode, body)
	}
}
