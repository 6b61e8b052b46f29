package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/deskspace/deskspace/internal/events"
	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type SendMessageInput struct {
	Recipient string `json:"recipient" validate:"required"`
	Property  string `json:"property" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Body      string `json:"message" validate:"required,max=5000"`
}

type MessageService struct {
	messages   store.MessageStore
	users      store.UserStore
	properties store.PropertyStore
	events     events.Publisher
	now        func() time.Time
}

func NewMessageService(messages store.MessageStore, users store.UserStore, properties store.PropertyStore, pub events.Publisher) *MessageService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &MessageService{messages: messages, users: users, properties: properties, events: pub, now: time.Now}
}

// Send delivers an inquiry about a property to its recipient.
func (s *MessageService) Send(ctx context.Context, sess *Session, in SendMessageInput) (*models.Message, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Body = strings.TrimSpace(in.Body)
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	recipient, err := parseID("recipient", in.Recipient)
	if err != nil {
		return nil, err
	}
	propertyID, err := parseID("property", in.Property)
	if err != nil {
		return nil, err
	}
	if recipient == sess.UserID {
		return nil, invalid("recipient", "can not be yourself")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.users.GetUser(gctx, recipient); err != nil {
			return storeErr("get recipient", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.properties.GetProperty(gctx, propertyID); err != nil {
			return storeErr("get property", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &models.Message{
		Sender:    sess.UserID,
		Recipient: recipient,
		Property:  propertyID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.messages.CreateMessage(ctx, m); err != nil {
		return nil, upstream("create message", err)
	}
	publish(ctx, s.events, events.New(events.MessageSent, map[string]any{
		"messageId":  m.ID.Hex(),
		"sender":     m.Sender.Hex(),
		"recipient":  m.Recipient.Hex(),
		"propertyId": m.Property.Hex(),
	}))
	return m, nil
}

// Inbox returns the caller's messages, unread first, each group newest
// first, with sender and property names resolved.
func (s *MessageService) Inbox(ctx context.Context, sess *Session) ([]models.MessageView, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	msgs, err := s.messages.ListMessagesForRecipient(ctx, sess.UserID)
	if err != nil {
		return nil, upstream("list messages", err)
	}
	views := []models.MessageView{}
	if len(msgs) == 0 {
		return views, nil
	}

	senderIDs, propertyIDs := distinctRefs(msgs)
	usernames := map[primitive.ObjectID]string{}
	names := map[primitive.ObjectID]string{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.users.GetUsersByIDs(gctx, senderIDs)
		if err != nil {
			return upstream("resolve senders", err)
		}
		for _, u := range users {
			usernames[u.ID] = u.Username
		}
		return nil
	})
	g.Go(func() error {
		props, err := s.properties.GetPropertiesByIDs(gctx, propertyIDs)
		if err != nil {
			return upstream("resolve properties", err)
		}
		for _, p := range props {
			names[p.ID] = p.Name
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range msgs {
		views = append(views, models.MessageView{
			Message:        m,
			SenderUsername: usernames[m.Sender],
			PropertyName:   names[m.Property],
		})
	}
	// store order is newest first; keep it within each group
	sort.SliceStable(views, func(i, j int) bool {
		return !views[i].Read && views[j].Read
	})
	return views, nil
}

func distinctRefs(msgs []models.Message) (senders, properties []primitive.ObjectID) {
	seenS := map[primitive.ObjectID]bool{}
	seenP := map[primitive.ObjectID]bool{}
	for _, m := range msgs {
		if !seenS[m.Sender] {
			seenS[m.Sender] = true
			senders = append(senders, m.Sender)
		}
		if !seenP[m.Property] {
			seenP[m.Property] = true
			properties = append(properties, m.Property)
		}
	}
	return senders, properties
}

func (s *MessageService) UnreadCount(ctx context.Context, sess *Session) (int64, error) {
	if sess == nil {
		return 0, ErrUnauthenticated
	}
	n, err := s.messages.CountUnread(ctx, sess.UserID)
	if err != nil {
		return 0, upstream("count unread", err)
	}
	return n, nil
}

func (s *MessageService) owned(ctx context.Context, sess *Session, rawID string) (*models.Message, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return nil, ErrNotFound
	}
	m, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return nil, storeErr("get message", err)
	}
	if m.Recipient != sess.UserID {
		return nil, ErrUnauthorized
	}
	return m, nil
}

// ToggleRead flips the read flag. Only the recipient may do this.
func (s *MessageService) ToggleRead(ctx context.Context, sess *Session, rawID string) (*models.Message, error) {
	m, err := s.owned(ctx, sess, rawID)
	if err != nil {
		return nil, err
	}
	updated, err := s.messages.SetMessageRead(ctx, m.ID, !m.Read, s.now().UTC())
	if err != nil {
		return nil, storeErr("update message", err)
	}
	return updated, nil
}

// Delete removes a message. Only the recipient may do this.
func (s *MessageService) Delete(ctx context.Context, sess *Session, rawID string) error {
	m, err := s.owned(ctx, sess, rawID)
	if err != nil {
		return err
	}
	if err := s.messages.DeleteMessage(ctx, m.ID); err != nil {
		return storeErr("delete message", err)
	}
	return nil
}
