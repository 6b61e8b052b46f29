package handlers

import (
	"net/http"
	"testing"

	"github.com/deskspace/deskspace/internal/models"
)

func TestBookmarkEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.user(t, "owner@example.com", false)
	_, fan := s.user(t, "fan@example.com", false)
	p := createJSON(t, s, owner, "Nice")
	payload := map[string]string{"propertyId": p.ID.Hex()}

	type toggle struct {
		Message      string `json:"message"`
		IsBookmarked bool   `json:"isBookmarked"`
	}

	resp, body := s.json(t, http.MethodPost, "/bookmarks", fan, payload)
	if resp.StatusCode != http.StatusOK || !decode[toggle](t, body).IsBookmarked {
		t.Fatalf("add: %d %s", resp.StatusCode, body)
	}
	_, body = s.json(t, http.MethodPost, "/bookmarks/check", fan, payload)
	if !decode[toggle](t, body).IsBookmarked {
		t.Errorf("check after add: %s", body)
	}
	_, body = s.json(t, http.MethodGet, "/bookmarks", fan, nil)
	if list := decode[[]models.Property](t, body); len(list) != 1 || list[0].ID != p.ID {
		t.Errorf("list: %s", body)
	}

	_, body = s.json(t, http.MethodPost, "/bookmarks", fan, payload)
	if got := decode[toggle](t, body); got.IsBookmarked || got.Message != "Bookmark removed successfully" {
		t.Errorf("remove: %s", body)
	}

	if resp, _ := s.json(t, http.MethodPost, "/bookmarks", fan, map[string]string{"propertyId": "000000000000000000000000"}); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown property: %d", resp.StatusCode)
	}
	if resp, _ := s.json(t, http.MethodPost, "/bookmarks", fan, map[string]string{}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing propertyId: %d", resp.StatusCode)
	}
	if resp, _ := s.json(t, http.MethodGet, "/bookmarks", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous: %d", resp.StatusCode)
	}
}
