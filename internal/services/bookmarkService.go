package services

import (
	"context"

	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/store"
)

type BookmarkService struct {
	users      store.UserStore
	properties store.PropertyStore
}

func NewBookmarkService(users store.UserStore, properties store.PropertyStore) *BookmarkService {
	return &BookmarkService{users: users, properties: properties}
}

// Toggle adds the property to the caller's bookmarks, or removes it if it is
// already there. It returns the new state.
func (s *BookmarkService) Toggle(ctx context.Context, sess *Session, rawPropertyID string) (bool, error) {
	if sess == nil {
		return false, ErrUnauthenticated
	}
	propertyID, err := parsePropertyID(rawPropertyID)
	if err != nil {
		return false, err
	}
	if _, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		return false, storeErr("get property", err)
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return false, storeErr("get user", err)
	}

	if u.HasBookmark(propertyID) {
		if err := s.users.RemoveBookmark(ctx, u.ID, propertyID); err != nil {
			return false, storeErr("remove bookmark", err)
		}
		return false, nil
	}
	if err := s.users.AddBookmark(ctx, u.ID, propertyID); err != nil {
		return false, storeErr("add bookmark", err)
	}
	return true, nil
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, sess *Session, rawPropertyID string) (bool, error) {
	if sess == nil {
		return false, ErrUnauthenticated
	}
	propertyID, err := parsePropertyID(rawPropertyID)
	if err != nil {
		return false, err
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return false, storeErr("get user", err)
	}
	return u.HasBookmark(propertyID), nil
}

// List returns the caller's bookmarked properties in bookmark order.
// Bookmarks whose property no longer exists are skipped.
func (s *BookmarkService) List(ctx context.Context, sess *Session) ([]models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	out := []models.Property{}
	if len(u.Bookmarks) == 0 {
		return out, nil
	}
	found, err := s.properties.GetPropertiesByIDs(ctx, u.Bookmarks)
	if err != nil {
		return nil, upstream("get bookmarked properties", err)
	}
	byID := make(map[string]models.Property, len(found))
	for _, p := range found {
		byID[p.ID.Hex()] = p
	}
	for _, id := range u.Bookmarks {
		if p, ok := byID[id.Hex()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
