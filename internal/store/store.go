package store

import (
	"context"
	"errors"
	"time"

	"github.com/deskspace/deskspace/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// PropertyFilter narrows a property query. Zero-valued fields do not filter.
type PropertyFilter struct {
	Status   models.Status
	Owner    primitive.ObjectID
	Featured *bool
	Type     string
	// Location matches street, city, state or zipcode, case-insensitively.
	Location string
}

// Page is an offset window. Limit 0 means no limit.
type Page struct {
	Skip  int64
	Limit int64
}

type PropertyStore interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error)
	// ReplaceProperty overwrites the owner-editable fields. Owner, status,
	// approval notes, the featured flag and createdAt are left untouched.
	ReplaceProperty(ctx context.Context, p *models.Property) error
	SetPropertyStatus(ctx context.Context, id primitive.ObjectID, status models.Status, notes string, at time.Time) (*models.Property, error)
	SetPropertyFeatured(ctx context.Context, id primitive.ObjectID, featured bool, at time.Time) (*models.Property, error)
	DeleteProperty(ctx context.Context, id primitive.ObjectID) error
	// ListProperties returns the page, newest first, and the filtered total.
	ListProperties(ctx context.Context, f PropertyFilter, page Page) ([]models.Property, int64, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error
	AddBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error
	RemoveBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	// ListMessagesForRecipient returns messages newest first.
	ListMessagesForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Message, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	SetMessageRead(ctx context.Context, id primitive.ObjectID, read bool, at time.Time) (*models.Message, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}
