package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/dbtest"
	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/hash"
	"github.com/omart/marketplace/internal/media"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
)

type fakeStorage struct {
	mu        sync.Mutex
	uploads   int
	failAt    int
	destroyed []string
}

func (s *fakeStorage) Upload(_ context.Context, r io.Reader, name string) (media.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failAt > 0 && s.uploads == s.failAt {
		return media.Image{}, errors.New("storage exploded")
	}
	_, _ = io.Copy(io.Discard, r)
	return media.Image{URL: "https://cdn.test/" + name, PublicID: fmt.Sprintf("mart/products/%d", s.uploads)}, nil
}

func (s *fakeStorage) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []ProductEvent
}

func (f *fakeEvents) PublishEvent(_ context.Context, _ string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event.(ProductEvent))
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]bool
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexed == nil {
		f.indexed = map[uuid.UUID]bool{}
	}
	f.indexed[p.ID] = true
	return nil
}

func (f *fakeIndex) RemoveProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated int
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[key] = value
}

func (f *fakeCache) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
	f.invalidated++
}

type sentMail struct {
	to     string
	title  string
	reason string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) ProductApproved(_ context.Context, to models.Contact, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to.Email, title: title})
	return nil
}

func (f *fakeNotifier) ProductRejected(_ context.Context, to models.Contact, title, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to.Email, title: title, reason: reason})
	return nil
}

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Storage *fakeStorage
	Events  *fakeEvents
	Index   *fakeIndex
	Cache   *fakeCache
	Mail    *fakeNotifier
	Catalog *CatalogService
	Mod     *ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	env := &testEnv{
		DB:      db,
		Repo:    &repo.GormRepo{DB: db},
		Storage: &fakeStorage{},
		Events:  &fakeEvents{},
		Index:   &fakeIndex{},
		Cache:   &fakeCache{},
		Mail:    &fakeNotifier{},
	}
	hooks := Hooks{Events: env.Events, Index: env.Index, Cache: env.Cache, Notify: env.Mail}
	env.Catalog = &CatalogService{
		Repo:  env.Repo,
		Media: &media.Attacher{Storage: env.Storage},
		Hooks: hooks,
	}
	env.Mod = &ModerationService{Repo: env.Repo, Hooks: hooks}
	return env
}

func (e *testEnv) user(t *testing.T, name string, role domain.Role) domain.Actor {
	t.Helper()

	pw, err := hash.HashPassword("password1")
	require.NoError(t, err)
	u := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: pw,
		Phone:        "5550001111",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.DB.Create(&u).Error)
	return domain.Actor{ID: u.ID, Role: u.Role}
}

func jpeg(name string) media.File {
	data := []byte("\xff\xd8\xff fake jpeg")
	return media.File{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func jpegs(n int) []media.File {
	out := make([]media.File, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, jpeg(fmt.Sprintf("photo-%d.jpg", i)))
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func (e *testEnv) mustCreate(t *testing.T, seller domain.Actor) uuid.UUID {
	t.Helper()

	p, err := e.Catalog.CreateProduct(context.Background(), seller, lampRequest(), jpegs(1))
	require.NoError(t, err)
	return p.ID
}
