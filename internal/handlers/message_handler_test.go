package handlers

import (
	"net/http"
	"testing"

	"github.com/deskspace/deskspace/internal/models"
)

func TestMessageEndpoints(t *testing.T) {
	s := newTestServer(t)
	ownerID, owner := s.user(t, "owner@example.com", false)
	_, guest := s.user(t, "guest@example.com", false)
	p := createJSON(t, s, owner, "Quiet Room")

	inquiry := map[string]string{
		"recipient": ownerID,
		"property":  p.ID.Hex(),
		"name":      "Guest",
		"email":     "guest@example.com",
		"message":   "Is it free on Monday?",
	}
	resp, body := s.json(t, http.MethodPost, "/messages", guest, inquiry)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: %d %s", resp.StatusCode, body)
	}
	sent := decode[models.Message](t, body)

	if resp, _ := s.json(t, http.MethodPost, "/messages", owner, inquiry); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("message to self: %d", resp.StatusCode)
	}

	_, body = s.json(t, http.MethodGet, "/messages/unread-count", owner, nil)
	if n := decode[int](t, body); n != 1 {
		t.Errorf("unread = %d", n)
	}

	_, body = s.json(t, http.MethodGet, "/messages", owner, nil)
	inbox := decode[[]models.MessageView](t, body)
	if len(inbox) != 1 || inbox[0].SenderUsername != "guest" || inbox[0].PropertyName != "Quiet Room" {
		t.Fatalf("inbox: %s", body)
	}

	path := "/messages/" + sent.ID.Hex()
	if resp, _ := s.json(t, http.MethodPut, path, guest, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("sender marking read: %d", resp.StatusCode)
	}
	resp, body = s.json(t, http.MethodPut, path, owner, nil)
	if resp.StatusCode != http.StatusOK || !decode[models.Message](t, body).Read {
		t.Errorf("mark read: %d %s", resp.StatusCode, body)
	}
	_, body = s.json(t, http.MethodGet, "/messages/unread-count", owner, nil)
	if n := decode[int](t, body); n != 0 {
		t.Errorf("unread after read = %d", n)
	}

	if resp, _ := s.json(t, http.MethodDelete, path, guest, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("sender delete: %d", resp.StatusCode)
	}
	if resp, _ := s.json(t, http.MethodDelete, path, owner, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("recipient delete: %d", resp.StatusCode)
	}
}
