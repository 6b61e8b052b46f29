package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/deskspace/deskspace/internal/db"
	"github.com/deskspace/deskspace/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection      = "users"
	propertiesCollection = "properties"
	messagesCollection   = "messages"
)

// MongoStore implements PropertyStore, UserStore and MessageStore on top of
// the shared lazy connection handle.
type MongoStore struct {
	mongo *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{mongo: m}
}

// EnsureIndexes creates the unique email index and the listing indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	users, err := s.mongo.Collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	props, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return err
	}
	if _, err := props.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("properties index: %w", err)
	}

	msgs, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return err
	}
	if _, err := msgs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}},
	}); err != nil {
		return fmt.Errorf("messages index: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// propertyQuery translates a filter into a Mongo query document.
func propertyQuery(f PropertyFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if !f.Owner.IsZero() {
		q["owner"] = f.Owner
	}
	if f.Featured != nil {
		q["is_featured"] = *f.Featured
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Location != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"location.street": rx},
			bson.M{"location.city": rx},
			bson.M{"location.state": rx},
			bson.M{"location.zipcode": rx},
		}
	}
	return q
}

// --- properties ---

func (s *MongoStore) CreateProperty(ctx context.Context, p *models.Property) error {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err = coll.InsertOne(ctx, p)
	return err
}

func (s *MongoStore) GetProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return nil, err
	}
	var p models.Property
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MongoStore) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.Property{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ReplaceProperty(ctx context.Context, p *models.Property) error {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":          p.Name,
		"type":          p.Type,
		"description":   p.Description,
		"location":      p.Location,
		"desk_capacity": p.DeskCapacity,
		"rooms":         p.Rooms,
		"square_feet":   p.SquareFeet,
		"amenities":     p.Amenities,
		"rates":         p.Rates,
		"contact":       p.Contact,
		"images":        p.Images,
		"updatedAt":     p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) updateProperty(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Property, error) {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MongoStore) SetPropertyStatus(ctx context.Context, id primitive.ObjectID, status models.Status, notes string, at time.Time) (*models.Property, error) {
	return s.updateProperty(ctx, id, bson.M{"status": status, "approvalNotes": notes, "updatedAt": at})
}

func (s *MongoStore) SetPropertyFeatured(ctx context.Context, id primitive.ObjectID, featured bool, at time.Time) (*models.Property, error) {
	return s.updateProperty(ctx, id, bson.M{"is_featured": featured, "updatedAt": at})
}

func (s *MongoStore) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListProperties(ctx context.Context, f PropertyFilter, page Page) ([]models.Property, int64, error) {
	coll, err := s.mongo.Collection(ctx, propertiesCollection)
	if err != nil {
		return nil, 0, err
	}
	q := propertyQuery(f)

	total, err := coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(page.Skip)
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	cursor, err := coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := []models.Property{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// --- users ---

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	coll, err := s.mongo.Collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Bookmarks == nil {
		u.Bookmarks = []primitive.ObjectID{}
	}
	if _, err := coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, q bson.M) (*models.User, error) {
	coll, err := s.mongo.Collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := coll.FindOne(ctx, q).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	coll, err := s.mongo.Collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.User{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) updateUser(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	coll, err := s.mongo.Collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetAdmin(ctx context.Context, id primitive.ObjectID, isAdmin bool) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{"isAdmin": isAdmin, "updatedAt": time.Now().UTC()}})
}

func (s *MongoStore) AddBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return s.updateUser(ctx, userID, bson.M{"$addToSet": bson.M{"bookmarks": propertyID}})
}

func (s *MongoStore) RemoveBookmark(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	return s.updateUser(ctx, userID, bson.M{"$pull": bson.M{"bookmarks": propertyID}})
}

// --- messages ---

func (s *MongoStore) CreateMessage(ctx context.Context, m *models.Message) error {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return err
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err = coll.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return nil, err
	}
	var m models.Message
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *MongoStore) ListMessagesForRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Message, error) {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.Message{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
}

func (s *MongoStore) SetMessageRead(ctx context.Context, id primitive.ObjectID, read bool, at time.Time) (*models.Message, error) {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Message
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": read, "updatedAt": at}}, opts).Decode(&m)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *MongoStore) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	coll, err := s.mongo.Collection(ctx, messagesCollection)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
