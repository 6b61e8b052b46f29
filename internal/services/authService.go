package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Session is the resolved identity of a caller.
type Session struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}

type Claims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

var errBadToken = errors.New("invalid token")

// SessionService issues and resolves signed session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token carrying the user id and admin flag.
func (s *SessionService) Issue(userID primitive.ObjectID, isAdmin bool) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:  userID.Hex(),
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionService) parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errBadToken
	}
	return c, nil
}

// Resolve returns the session for a raw token, or nil for anything invalid:
// bad signature, expiry, missing or malformed user id.
func (s *SessionService) Resolve(raw string) *Session {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	claims, err := s.parse(raw)
	if err != nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil || id.IsZero() {
		return nil
	}
	return &Session{UserID: id, IsAdmin: claims.IsAdmin}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
