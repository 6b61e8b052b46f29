package services

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/deskspace/deskspace/internal/events"
	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// ListQuery selects a page of properties.
type ListQuery struct {
	Page     int
	PageSize int
	// Admin lists every status; only admins may set it.
	Admin    bool
	Featured bool
	Location string
	Type     string
}

type ListResult struct {
	Items    []models.Property `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// CanMutate reports whether the session may edit or delete the property.
func CanMutate(p *models.Property, sess *Session) bool {
	if sess == nil || p == nil {
		return false
	}
	return sess.IsAdmin || p.Owner == sess.UserID
}

type PropertyService struct {
	properties store.PropertyStore
	uploader   *Uploader
	events     events.Publisher
	now        func() time.Time
}

func NewPropertyService(properties store.PropertyStore, uploader *Uploader, pub events.Publisher) *PropertyService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &PropertyService{properties: properties, uploader: uploader, events: pub, now: time.Now}
}

func parseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, invalid(field, "is not a valid id")
	}
	return id, nil
}

// parsePropertyID treats a malformed id as a missing property.
func parsePropertyID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}

func publish(ctx context.Context, pub events.Publisher, e events.Event) {
	if err := pub.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Printf("[events] Warning: Failed to publish %s: %v", e.Type, err)
	}
}

func applyInput(p *models.Property, in PropertyInput) {
	p.Name = in.Name
	p.Type = in.Type
	p.Description = in.Description
	p.Location = models.Location(in.Location)
	p.DeskCapacity = in.DeskCapacity
	p.Rooms = in.Rooms
	p.SquareFeet = in.SquareFeet
	p.Amenities = in.Amenities
	p.Rates = models.Rates(in.Rates)
	p.Contact = models.Contact(in.Contact)
}

// Create stores a new pending listing owned by the caller. Images are
// uploaded before the document is written.
func (s *PropertyService) Create(ctx context.Context, sess *Session, in PropertyInput, files []ImageFile) (*models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	stored, err := s.uploader.Upload(ctx, files)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Property{
		Owner:     sess.UserID,
		Status:    models.StatusPending,
		Images:    append(append([]string{}, in.Images...), urlsOf(stored)...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(p, in)
	if err := s.properties.CreateProperty(ctx, p); err != nil {
		s.uploader.Release(ctx, stored)
		return nil, upstream("create property", err)
	}

	publish(ctx, s.events, events.New(events.PropertyCreated, map[string]any{
		"propertyId": p.ID.Hex(),
		"owner":      p.Owner.Hex(),
		"name":       p.Name,
	}))
	return p, nil
}

func (s *PropertyService) Get(ctx context.Context, rawID string) (*models.Property, error) {
	id, err := parsePropertyID(rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		return nil, storeErr("get property", err)
	}
	return p, nil
}

// mutable loads a property and checks the caller may change it.
func (s *PropertyService) mutable(ctx context.Context, sess *Session, rawID string) (*models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	p, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(p, sess) {
		return nil, ErrUnauthorized
	}
	return p, nil
}

// Update replaces the owner-editable fields. Owner, status and the featured
// flag are never touched. Existing images are kept unless the request
// supplied images or new files.
func (s *PropertyService) Update(ctx context.Context, sess *Session, rawID string, in PropertyInput, files []ImageFile) (*models.Property, error) {
	p, err := s.mutable(ctx, sess, rawID)
	if err != nil {
		return nil, err
	}
	stored, err := s.uploader.Upload(ctx, files)
	if err != nil {
		return nil, err
	}

	applyInput(p, in)
	if in.ImagesProvided || len(stored) > 0 {
		p.Images = append(append([]string{}, in.Images...), urlsOf(stored)...)
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.properties.ReplaceProperty(ctx, p); err != nil {
		s.uploader.Release(ctx, stored)
		return nil, storeErr("update property", err)
	}
	return s.Get(ctx, rawID)
}

func (s *PropertyService) Delete(ctx context.Context, sess *Session, rawID string) error {
	p, err := s.mutable(ctx, sess, rawID)
	if err != nil {
		return err
	}
	if err := s.properties.DeleteProperty(ctx, p.ID); err != nil {
		return storeErr("delete property", err)
	}
	publish(ctx, s.events, events.New(events.PropertyDeleted, map[string]any{
		"propertyId": p.ID.Hex(),
		"deletedBy":  sess.UserID.Hex(),
	}))
	return nil
}

// SetStatus approves or rejects a listing. Admin only; repeating the same
// decision is allowed.
func (s *PropertyService) SetStatus(ctx context.Context, sess *Session, rawID string, status models.Status, notes string) (*models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if !sess.IsAdmin {
		return nil, ErrUnauthorized
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, invalid("status", "must be approved or rejected")
	}
	id, err := parsePropertyID(rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.properties.SetPropertyStatus(ctx, id, status, strings.TrimSpace(notes), s.now().UTC())
	if err != nil {
		return nil, storeErr("set property status", err)
	}
	publish(ctx, s.events, events.New(events.PropertyStatusChanged, map[string]any{
		"propertyId": p.ID.Hex(),
		"owner":      p.Owner.Hex(),
		"status":     string(p.Status),
		"notes":      p.ApprovalNotes,
	}))
	return p, nil
}

// SetFeatured toggles the featured flag. Admin only.
func (s *PropertyService) SetFeatured(ctx context.Context, sess *Session, rawID string, featured bool) (*models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if !sess.IsAdmin {
		return nil, ErrUnauthorized
	}
	id, err := parsePropertyID(rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.properties.SetPropertyFeatured(ctx, id, featured, s.now().UTC())
	if err != nil {
		return nil, storeErr("feature property", err)
	}
	return p, nil
}

func pageOf(q ListQuery) (store.Page, ListQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 1 {
		return store.Page{}, q, invalid("page", "must be at least 1")
	}
	if q.PageSize < 1 {
		return store.Page{}, q, invalid("pageSize", "must be at least 1")
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if int64(q.Page-1) > math.MaxInt64/int64(q.PageSize) {
		return store.Page{}, q, invalid("page", "is too large")
	}
	return store.Page{Skip: int64(q.Page-1) * int64(q.PageSize), Limit: int64(q.PageSize)}, q, nil
}

func (s *PropertyService) list(ctx context.Context, f store.PropertyFilter, q ListQuery) (*ListResult, error) {
	page, q, err := pageOf(q)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		canon, ok := models.CanonicalWorkspaceType(t)
		if !ok {
			return nil, invalid("type", "must be one of %s", strings.Join(models.WorkspaceTypes, ", "))
		}
		f.Type = canon
	}
	f.Location = strings.TrimSpace(q.Location)

	items, total, err := s.properties.ListProperties(ctx, f, page)
	if err != nil {
		return nil, upstream("list properties", err)
	}
	if items == nil {
		items = []models.Property{}
	}
	return &ListResult{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// List returns approved listings to everyone. An admin query lists every
// status and is refused before any lookup when the caller is not an admin.
func (s *PropertyService) List(ctx context.Context, sess *Session, q ListQuery) (*ListResult, error) {
	var f store.PropertyFilter
	if q.Admin {
		if sess == nil {
			return nil, ErrUnauthenticated
		}
		if !sess.IsAdmin {
			return nil, ErrUnauthorized
		}
	} else {
		f.Status = models.StatusApproved
	}
	if q.Featured {
		featured := true
		f.Featured = &featured
	}
	return s.list(ctx, f, q)
}

// Pending returns the moderation queue. Admin only.
func (s *PropertyService) Pending(ctx context.Context, sess *Session) ([]models.Property, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if !sess.IsAdmin {
		return nil, ErrUnauthorized
	}
	items, _, err := s.properties.ListProperties(ctx, store.PropertyFilter{Status: models.StatusPending}, store.Page{})
	if err != nil {
		return nil, upstream("list pending properties", err)
	}
	if items == nil {
		items = []models.Property{}
	}
	return items, nil
}

// ByOwner lists one user's listings in every status. Callers see their own;
// admins see anyone's.
func (s *PropertyService) ByOwner(ctx context.Context, sess *Session, rawOwner string, q ListQuery) (*ListResult, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	owner, err := parseID("userId", rawOwner)
	if err != nil {
		return nil, err
	}
	if owner != sess.UserID && !sess.IsAdmin {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, store.PropertyFilter{Owner: owner}, q)
}
