package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserService handles registration, login and admin provisioning.
type UserService struct {
	users    store.UserStore
	sessions *SessionService
	now      func() time.Time
}

func NewUserService(users store.UserStore, sessions *SessionService) *UserService {
	return &UserService{users: users, sessions: sessions, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a non-admin user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in, false)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, admin bool) (*models.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, upstream("hash password", err)
	}
	now := s.now().UTC()
	u := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  hash,
		IsAdmin:   admin,
		Bookmarks: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, invalid("email", "is already registered")
		}
		return nil, upstream("create user", err)
	}
	return u, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := checkStruct(in); err != nil {
		return "", nil, err
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, upstream("find user", err)
	}
	if !VerifyPassword(in.Password, u.Password) {
		return "", nil, ErrBadCredentials
	}
	token, err := s.sessions.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return "", nil, upstream("issue token", err)
	}
	return token, u, nil
}

// Me returns the user behind a session.
func (s *UserService) Me(ctx context.Context, sess *Session) (*models.User, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account
// with that email. created reports which one happened.
func (s *UserService) EnsureAdmin(ctx context.Context, in RegisterInput) (u *models.User, created bool, err error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		in.Username = strings.SplitN(in.Email, "@", 2)[0]
	}

	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.users.SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, false, upstream("promote user", err)
			}
			existing.IsAdmin = true
			log.Printf("[users] promoted %s to admin", existing.Email)
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, upstream("find user", err)
	}

	if err := checkStruct(in); err != nil {
		return nil, false, err
	}
	u, err = s.create(ctx, in, true)
	if err != nil {
		return nil, false, err
	}
	log.Printf("[users] created admin %s", u.Email)
	return u, true, nil
}
