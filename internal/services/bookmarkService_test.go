package services

import (
	"context"
	"errors"
	"testing"

	"github.com/deskspace/deskspace/internal/config"
)

func TestBookmarkToggle(t *testing.T) {
	f := newFixture(t, config.PolicyOrphan)
	bookmarks := NewBookmarkService(f.mem, f.mem)
	ctx := context.Background()
	a := f.create(t, f.owner, "A")
	b := f.create(t, f.owner, "B")

	if _, err := bookmarks.Toggle(ctx, nil, idOf(a)); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("anonymous: got %v", err)
	}
	if _, err := bookmarks.Toggle(ctx, f.other, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad id: got %v", err)
	}

	for _, p := range []string{idOf(b), idOf(a)} {
		on, err := bookmarks.Toggle(ctx, f.other, p)
		if err != nil || !on {
			t.Fatalf("add %s: %v %v", p, on, err)
		}
	}
	list, err := bookmarks.List(ctx, f.other)
	if err != nil || len(list) != 2 || list[0].Name != "B" {
		t.Fatalf("list: %+v %v", list, err)
	}

	on, err := bookmarks.Toggle(ctx, f.other, idOf(b))
	if err != nil || on {
		t.Fatalf("remove: %v %v", on, err)
	}
	if ok, _ := bookmarks.IsBookmarked(ctx, f.other, idOf(b)); ok {
		t.Error("b still bookmarked")
	}
	if ok, _ := bookmarks.IsBookmarked(ctx, f.other, idOf(a)); !ok {
		t.Error("a not bookmarked")
	}
}
