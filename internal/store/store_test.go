package store

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/deskspace/deskspace/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seed(t *testing.T, s *MemoryStore, n int, status models.Status, city string) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := &models.Property{
			Owner:     primitive.NewObjectID(),
			Name:      "desk",
			Type:      "Hot Desk",
			Status:    status,
			Location:  models.Location{City: city},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateProperty(context.Background(), p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
}

func TestMemoryListPagination(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, 13, models.StatusApproved, "Derby")
	seed(t, s, 4, models.StatusPending, "Derby")

	f := PropertyFilter{Status: models.StatusApproved}
	items, total, err := s.ListProperties(context.Background(), f, Page{Skip: 0, Limit: 6})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 13 || len(items) != 6 {
		t.Fatalf("page 1: got %d items, total %d", len(items), total)
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatal("items not newest first")
		}
	}

	items, total, _ = s.ListProperties(context.Background(), f, Page{Skip: 12, Limit: 6})
	if total != 13 || len(items) != 1 {
		t.Fatalf("page 3: got %d items, total %d", len(items), total)
	}

	items, _, _ = s.ListProperties(context.Background(), f, Page{Skip: 60, Limit: 6})
	if len(items) != 0 {
		t.Fatalf("past end: got %d items", len(items))
	}

	items, _, err = s.ListProperties(context.Background(), f, Page{Skip: -6, Limit: 6})
	if err != nil || len(items) != 6 {
		t.Fatalf("negative skip: got %d items, %v", len(items), err)
	}
	items, _, err = s.ListProperties(context.Background(), f, Page{Skip: 12, Limit: math.MaxInt64})
	if err != nil || len(items) != 1 {
		t.Fatalf("huge limit: got %d items, %v", len(items), err)
	}
}

func TestMemoryLocationFilter(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, 2, models.StatusApproved, "Nottingham")
	seed(t, s, 3, models.StatusApproved, "Derby")

	_, total, err := s.ListProperties(context.Background(), PropertyFilter{Location: "notting"}, Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 Nottingham listings, got %d", total)
	}
}

func TestMemoryReplaceKeepsOwnerAndStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	p := &models.Property{Owner: owner, Name: "before", Status: models.StatusApproved, ApprovalNotes: "ok"}
	if err := s.CreateProperty(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	edit := *p
	edit.Owner = primitive.NewObjectID()
	edit.Status = models.StatusPending
	edit.Name = "after"
	if err := s.ReplaceProperty(ctx, &edit); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, _ := s.GetProperty(ctx, p.ID)
	if got.Name != "after" {
		t.Errorf("name: got %s", got.Name)
	}
	if got.Owner != owner {
		t.Error("owner changed")
	}
	if got.Status != models.StatusApproved || got.ApprovalNotes != "ok" {
		t.Errorf("status changed: %s %q", got.Status, got.ApprovalNotes)
	}
}

func TestMemoryDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.CreateUser(ctx, &models.User{Email: "a@b.com"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	err := s.CreateUser(ctx, &models.User{Email: "a@b.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryBookmarks(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := &models.User{Email: "a@b.com"}
	_ = s.CreateUser(ctx, u)
	pid := primitive.NewObjectID()

	_ = s.AddBookmark(ctx, u.ID, pid)
	_ = s.AddBookmark(ctx, u.ID, pid)
	got, _ := s.GetUser(ctx, u.ID)
	if len(got.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(got.Bookmarks))
	}

	_ = s.RemoveBookmark(ctx, u.ID, pid)
	got, _ = s.GetUser(ctx, u.ID)
	if got.HasBookmark(pid) {
		t.Fatal("bookmark not removed")
	}

	if err := s.AddBookmark(ctx, primitive.NewObjectID(), pid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPropertyQuery(t *testing.T) {
	owner := primitive.NewObjectID()
	featured := true
	q := propertyQuery(PropertyFilter{
		Status:   models.StatusApproved,
		Owner:    owner,
		Featured: &featured,
		Type:     "Hot Desk",
		Location: "St. Ann's",
	})

	if q["status"] != models.StatusApproved {
		t.Errorf("status: %v", q["status"])
	}
	if q["owner"] != owner {
		t.Errorf("owner: %v", q["owner"])
	}
	if q["is_featured"] != true {
		t.Errorf("featured: %v", q["is_featured"])
	}
	or, ok := q["$or"].(bson.A)
	if !ok || len(or) != 4 {
		t.Fatalf("$or: %v", q["$or"])
	}
	rx := or[1].(bson.M)["location.city"].(primitive.Regex)
	if rx.Pattern != `St\. Ann's` || rx.Options != "i" {
		t.Errorf("regex: %+v", rx)
	}

	if len(propertyQuery(PropertyFilter{})) != 0 {
		t.Error("empty filter should produce empty query")
	}
}
