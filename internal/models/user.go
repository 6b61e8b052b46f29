package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string               `bson:"email" json:"email"`
	Username  string               `bson:"username" json:"username"`
	Password  string               `bson:"password,omitempty" json:"-"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	IsAdmin   bool                 `bson:"isAdmin" json:"isAdmin"`
	Bookmarks []primitive.ObjectID `bson:"bookmarks" json:"bookmarks"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasBookmark reports whether the property is in the user's bookmarks.
func (u *User) HasBookmark(propertyID primitive.ObjectID) bool {
	for _, id := range u.Bookmarks {
		if id == propertyID {
			return true
		}
	}
	return false
}
