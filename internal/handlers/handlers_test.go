package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/deskspace/deskspace/internal/store"
	"github.com/gofiber/fiber/v2"
)

type memObjects struct {
	mu   sync.Mutex
	puts int
	fail bool
}

func (m *memObjects) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.fail {
		return "", errors.New("bucket offline")
	}
	return "http://objects.test/property-images/" + name, nil
}

func (m *memObjects) Remove(context.Context, string) error { return nil }

type testServer struct {
	app      *fiber.App
	mem      *store.MemoryStore
	objects  *memObjects
	sessions *services.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := store.NewMemoryStore()
	objects := &memObjects{}
	sessions := services.NewSessionService("test-secret", time.Hour)
	uploader := services.NewUploader(objects, config.UploadConfig{
		MaxBytes:      1 << 20,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		FailurePolicy: config.PolicyOrphan,
	})
	properties := services.NewPropertyService(mem, uploader, nil)

	app := NewApp(4<<20, Routes{
		Sessions:   sessions,
		Auth:       NewAuthHandler(services.NewUserService(mem, sessions)),
		Properties: NewPropertyHandler(properties, "http://deskspace.test/"),
		Admin:      NewAdminHandler(properties),
		Uploads:    NewUploadHandler(uploader),
		Bookmarks:  NewBookmarkHandler(services.NewBookmarkService(mem, mem)),
		Messages:   NewMessageHandler(services.NewMessageService(mem, mem, mem, nil)),
	})
	return &testServer{app: app, mem: mem, objects: objects, sessions: sessions}
}

// user creates an account directly in the store and returns its id and token.
func (s *testServer) user(t *testing.T, email string, admin bool) (string, string) {
	t.Helper()
	u := &models.User{Email: email, Username: strings.SplitN(email, "@", 2)[0], IsAdmin: admin}
	if err := s.mem.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := s.sessions.Issue(u.ID, admin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u.ID.Hex(), token
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func (s *testServer) json(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, token)
}

type part struct {
	field, filename, contentType, body string
}

func multipartRequest(t *testing.T, method, path string, fields map[string][]string, files []part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(pw, f.body)
	}
	w.Close()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

type listResponse struct {
	Items []models.Property `json:"items"`
	Total int64             `json:"total"`
}

func createJSON(t *testing.T, s *testServer, token, name string) models.Property {
	t.Helper()
	resp, body := s.json(t, http.MethodPost, "/properties", token, map[string]any{
		"name":     name,
		"type":     "Meeting Room",
		"location": map[string]any{"city": "Derby"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create %s: %d %s", name, resp.StatusCode, body)
	}
	return decode[models.Property](t, body)
}
