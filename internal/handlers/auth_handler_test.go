package handlers

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	t.Run("Register User", func(t *testing.T) {
		resp, body := s.json(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "test@example.com",
			"username": "tester",
			"password": "password123",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Failed to register user. Status: %d, Response: %s", resp.StatusCode, body)
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		resp, _ := s.json(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email":    "TEST@example.com",
			"username": "again",
			"password": "password123",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	var token string
	t.Run("Login", func(t *testing.T) {
		resp, body := s.json(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "test@example.com",
			"password": "password123",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Failed to login. Status: %d, Response: %s", resp.StatusCode, body)
		}
		token = decode[struct {
			Token string `json:"token"`
		}](t, body).Token
		if token == "" {
			t.Fatal("No token received")
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		resp, _ := s.json(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "test@example.com",
			"password": "wrong",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Me", func(t *testing.T) {
		if token == "" {
			t.Skip("Skipping test due to no auth token")
		}
		resp, body := s.json(t, http.MethodGet, "/auth/me", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me: %d %s", resp.StatusCode, body)
		}
		me := decode[map[string]any](t, body)
		if me["email"] != "test@example.com" {
			t.Errorf("me = %v", me)
		}
		if _, leaked := me["password"]; leaked {
			t.Error("password hash returned to client")
		}
	})
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "owner@example.com", false)

	req := multipartRequest(t, http.MethodPost, "/upload", nil, []part{{"file", "pic.png", "image/png", "png"}})
	resp, body := s.do(t, req, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: %d %s", resp.StatusCode, body)
	}
	if url := decode[map[string]string](t, body)["url"]; url == "" {
		t.Errorf("no url in %s", body)
	}

	req = multipartRequest(t, http.MethodPost, "/upload", nil, []part{{"file", "doc.pdf", "application/pdf", "pdf"}})
	if resp, _ := s.do(t, req, token); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf upload: %d", resp.StatusCode)
	}

	req = multipartRequest(t, http.MethodPost, "/upload", map[string][]string{"note": {"no file"}}, nil)
	if resp, _ := s.do(t, req, token); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file: %d", resp.StatusCode)
	}

	req = multipartRequest(t, http.MethodPost, "/upload", nil, []part{{"file", "pic.png", "image/png", "png"}})
	if resp, _ := s.do(t, req, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous upload: %d", resp.StatusCode)
	}
}
