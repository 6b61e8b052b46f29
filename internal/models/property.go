package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// WorkspaceTypes are the allowed values of Property.Type, as stored.
var WorkspaceTypes = []string{
	"Hot Desk",
	"Dedicated Desk",
	"Private Office",
	"Meeting Room",
	"Whole Office",
}

// CanonicalWorkspaceType accepts "Hot Desk", "hot desk", "HotDesk" or "hot-desk"
// and returns the stored form. ok is false for unknown types.
func CanonicalWorkspaceType(s string) (string, bool) {
	key := compact(s)
	if key == "" {
		return "", false
	}
	for _, t := range WorkspaceTypes {
		if compact(t) == key {
			return t, true
		}
	}
	return "", false
}

func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Location struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Zipcode string `bson:"zipcode" json:"zipcode"`
}

type Rates struct {
	Daily   *float64 `bson:"daily,omitempty" json:"daily,omitempty"`
	Weekly  *float64 `bson:"weekly,omitempty" json:"weekly,omitempty"`
	Monthly *float64 `bson:"monthly,omitempty" json:"monthly,omitempty"`
}

type Contact struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner         primitive.ObjectID `bson:"owner" json:"owner"`
	Name          string             `bson:"name" json:"name"`
	Type          string             `bson:"type" json:"type"`
	Description   string             `bson:"description" json:"description"`
	Location      Location           `bson:"location" json:"location"`
	DeskCapacity  int                `bson:"desk_capacity" json:"desk_capacity"`
	Rooms         int                `bson:"rooms" json:"rooms"`
	SquareFeet    int                `bson:"square_feet" json:"square_feet"`
	Amenities     []string           `bson:"amenities" json:"amenities"`
	Rates         Rates              `bson:"rates" json:"rates"`
	Contact       Contact            `bson:"contact" json:"contact"`
	Images        []string           `bson:"images" json:"images"`
	Status        Status             `bson:"status" json:"status"`
	ApprovalNotes string             `bson:"approvalNotes" json:"approvalNotes"`
	IsFeatured    bool               `bson:"is_featured" json:"is_featured"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
