package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/deskspace/deskspace/internal/config"
	"github.com/deskspace/deskspace/internal/models"
	"github.com/deskspace/deskspace/internal/store"
)

// fakeObjects is an in-memory ObjectStore. Names containing failOn fail.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	failOn  string
	puts    int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failOn != "" && bytes.Contains(data, []byte(f.failOn)) {
		return "", errors.New("object store unavailable")
	}
	f.objects[name] = data
	return "http://objects.test/property-images/" + name, nil
}

func (f *fakeObjects) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func image(name, contentType, body string) ImageFile {
	return ImageFile{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func uploadConfig(policy string) config.UploadConfig {
	return config.UploadConfig{
		MaxBytes:      1024,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		FailurePolicy: policy,
	}
}

type fixture struct {
	mem        *store.MemoryStore
	objects    *fakeObjects
	properties *PropertyService
	owner      *Session
	other      *Session
	admin      *Session
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	objects := newFakeObjects()
	f := &fixture{
		mem:        mem,
		objects:    objects,
		properties: NewPropertyService(mem, NewUploader(objects, uploadConfig(policy)), nil),
	}
	f.owner = f.addUser(t, "owner@example.com", false)
	f.other = f.addUser(t, "other@example.com", false)
	f.admin = f.addUser(t, "admin@example.com", true)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, admin bool) *Session {
	t.Helper()
	u := &models.User{Email: email, Username: strings.SplitN(email, "@", 2)[0], IsAdmin: admin}
	if err := f.mem.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &Session{UserID: u.ID, IsAdmin: admin}
}

func validInput(t *testing.T, name string) PropertyInput {
	t.Helper()
	in, err := NormalizePropertyInput(map[string]any{
		"name":     name,
		"type":     "Hot Desk",
		"location": map[string]any{"city": "Nottingham"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return in
}

func (f *fixture) create(t *testing.T, sess *Session, name string) *models.Property {
	t.Helper()
	p, err := f.properties.Create(context.Background(), sess, validInput(t, name), nil)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return p
}

func idOf(p *models.Property) string { return p.ID.Hex() }
