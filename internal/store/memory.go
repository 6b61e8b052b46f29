package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deskspace/deskspace/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process memory. It backs the
// STORE_BACKEND=memory mode and the handler tests.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[primitive.ObjectID]models.Property
	users      map[primitive.ObjectID]models.User
	messages   map[primitive.ObjectID]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[primitive.ObjectID]models.Property),
		users:      make(map[primitive.ObjectID]models.User),
		messages:   make(map[primitive.ObjectID]models.Message),
	}
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func cloneProperty(p models.Property) models.Property {
	p.Amenities = append([]string{}, p.Amenities...)
	p.Images = append([]string{}, p.Images...)
	p.Rates = models.Rates{Daily: cloneFloat(p.Rates.Daily), Weekly: cloneFloat(p.Rates.Weekly), Monthly: cloneFloat(p.Rates.Monthly)}
	return p
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneUser(u models.User) models.User {
	u.Bookmarks = append([]primitive.ObjectID{}, u.Bookmarks...)
	return u
}

func matches(p models.Property, f PropertyFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if !f.Owner.IsZero() && p.Owner != f.Owner {
		return false
	}
	if f.Featured != nil && p.IsFeatured != *f.Featured {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Location != "" {
		needle := strings.ToLower(f.Location)
		loc := p.Location
		found := false
		for _, field := range []string{loc.Street, loc.City, loc.State, loc.Zipcode} {
			if strings.Contains(strings.ToLower(field), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// newestFirst orders by createdAt descending, then by id descending.
func newestFirst(a, b time.Time, idA, idB primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA.Hex() > idB.Hex()
}

// --- properties ---

func (s *MemoryStore) CreateProperty(ctx context.Context, p *models.Property) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := s.properties[p.ID]; ok {
		return ErrDuplicate
	}
	s.properties[p.ID] = cloneProperty(*p)
	return nil
}

func (s *MemoryStore) GetProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneProperty(p)
	return &out, nil
}

func (s *MemoryStore) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Property{}
	for _, id := range ids {
		if p, ok := s.properties[id]; ok {
			out = append(out, cloneProperty(p))
		}
	}
	return out, nil
}

func (s *MemoryStore) ReplaceProperty(ctx context.Context, p *models.Property) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.properties[p.ID]
	if !ok {
		return ErrNotFound
	}
	next := cloneProperty(*p)
	next.Owner = cur.Owner
	next.Status = cur.Status
	next.ApprovalNotes = cur.ApprovalNotes
	next.IsFeatured = cur.IsFeatured
	next.CreatedAt = cur.CreatedAt
	s.properties[p.ID] = next
	return nil
}

func (s *MemoryStore) mutateProperty(id primitive.ObjectID, fn func(*models.Property)) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(&p)
	s.properties[id] = p
	out := cloneProperty(p)
	return &out, nil
}

func (s *MemoryStore) SetPropertyStatus(ctx context.Context, id primitive.ObjectID, status models.Status, notes string, at time.Time) (*models.Property, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	return s.mutateProperty(id, func(p *models.Property) {
		p.Status = status
		p.ApprovalNotes = notes
		p.UpdatedAt = at
	})
}

func (s *MemoryStore) SetPropertyFeatured(ctx context.Context, id primitive.ObjectID, featured bool, at time.Time) (*models.Property, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	return s.mutateProperty(id, func(p *models.Property) {
		p.IsFeatured = featured
		p.UpdatedAt = at
	})
}

func (s *MemoryStore) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[id]; !ok {
		return ErrNotFound
	}
	delete(s.properties, id)
	return nil
}

func (s *MemoryStore) ListProperties(ctx context.Context, f PropertyFilter, page Page) ([]models.Property, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Property
	for _, p := range s.properties {
		if matches(p, f) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})

	total := int64(len(all))
	start := page.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if page.Limit > 0 && page.Limit < end-start {
		end = start + page.Limit
	}

	items := make([]models.Property, 0, end-start)
	for _, p := range all[start:end] {
		items = append(items, cloneProperty(p))
	}
	return items, total, nil
}

// --- users ---

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Bookmarks == nil {
		u.Bookmarks = []primitive.ObjectID{}
	}
	s.users[u.ID] = cloneUser(*u)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *MemoryStore) mutateUser(ctx context.Context, id primitive.ObjectID, fn func(*models.User)) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *MemoryStore) SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error {
	return s.mutateUser(ctx, id, func(u *models.User) {
		u.IsAdmin = isAdmin
		u.UpdatedAt = time.Now().UTC()
	})
}

func (s *MemoryStore) AddBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return s.mutateUser(ctx, userID, func(u *models.User) {
		if !u.HasBookmark(propertyID) {
			u.Bookmarks = append(u.Bookmarks, propertyID)
		}
	})
}

func (s *MemoryStore) RemoveBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return s.mutateUser(ctx, userID, func(u *models.User) {
		kept := u.Bookmarks[:0]
		for _, id := range u.Bookmarks {
			if id != propertyID {
				kept = append(kept, id)
			}
		}
		u.Bookmarks = kept
	})
}

// --- messages ---

func (s *MemoryStore) CreateMessage(ctx context.Context, m *models.Message) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.messages[m.ID] = *m
	return nil
}

func (s *MemoryStore) GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) ListMessagesForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Message, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.Recipient == recipient {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if m.Recipient == recipient && !m.Read {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SetMessageRead(ctx context.Context, id primitive.ObjectID, read bool, at time.Time) (*models.Message, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Read = read
	m.UpdatedAt = at
	s.messages[id] = m
	return &m, nil
}

func (s *MemoryStore) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return ErrNotFound
	}
	delete(s.messages, id)
	return nil
}
