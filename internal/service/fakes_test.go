package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/sakif/codecraft/internal/apperror"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

// =========================================================================
// FAKE REPOSITORY
// =========================================================================
//
// fakeStore implements every repository interface in memory, the same way
// *sqlite.DB implements them all on one connection. Tests seed it directly
// and inspect it afterwards. Setting failDelete/failCreate simulates a
// database outage.

type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	users      map[string]*model.User // keyed by external UserID
	snippets   []*model.Snippet       // insertion order
	stars      map[[2]string]bool     // (userID, snippetID)
	comments   []*model.Comment
	executions []*model.ExecutionRecord

	failDelete error
	failCreate error
}

var (
	_ repository.UserRepository      = (*fakeStore)(nil)
	_ repository.SnippetRepository   = (*fakeStore)(nil)
	_ repository.StarRepository      = (*fakeStore)(nil)
	_ repository.CommentRepository   = (*fakeStore)(nil)
	_ repository.ExecutionRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		stars: make(map[[2]string]bool),
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("fake-%d", f.nextID)
}

func (f *fakeStore) addUser(userID, name string, pro bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[userID] = &model.User{ID: f.id(), UserID: userID, Name: name, IsPro: pro}
}

// --- users ---

func (f *fakeStore) Upsert(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	if existing, ok := f.users[u.UserID]; ok {
		u.ID, u.IsPro, u.CreatedAt = existing.ID, existing.IsPro, existing.CreatedAt
	} else {
		u.ID = f.id()
	}
	stored := *u
	f.users[u.UserID] = &stored
	return nil
}

func (f *fakeStore) GetUserByUserID(_ context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) SetPro(_ context.Context, userID string, isPro bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.IsPro = isPro
	return nil
}

// --- snippets ---

func (f *fakeStore) Create(_ context.Context, s *model.Snippet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	s.ID = f.id()
	stored := *s
	f.snippets = append(f.snippets, &stored)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snippets {
		if s.ID == id {
			out := *s
			return &out, nil
		}
	}
	return nil, apperror.NotFound("snippet", id)
}

func (f *fakeStore) List(_ context.Context) ([]model.Snippet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Snippet, 0, len(f.snippets))
	for _, s := range slices.Backward(f.snippets) {
		out = append(out, *s)
	}
	return out, nil
}

// DeleteCascade is all-or-nothing like the real one: failDelete aborts
// before anything is touched.
func (f *fakeStore) DeleteCascade(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	idx := slices.IndexFunc(f.snippets, func(s *model.Snippet) bool { return s.ID == id })
	if idx < 0 {
		return apperror.NotFound("snippet", id)
	}
	f.comments = slices.DeleteFunc(f.comments, func(c *model.Comment) bool { return c.SnippetID == id })
	for k := range f.stars {
		if k[1] == id {
			delete(f.stars, k)
		}
	}
	f.snippets = slices.Delete(f.snippets, idx, idx+1)
	return nil
}

// --- stars ---

func (f *fakeStore) Toggle(_ context.Context, userID, snippetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{userID, snippetID}
	if f.stars[k] {
		delete(f.stars, k)
		return false, nil
	}
	f.stars[k] = true
	return true, nil
}

func (f *fakeStore) IsStarred(_ context.Context, userID, snippetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stars[[2]string{userID, snippetID}], nil
}

func (f *fakeStore) CountBySnippet(_ context.Context, snippetID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.stars {
		if k[1] == snippetID {
			n++
		}
	}
	return n, nil
}

// --- comments ---

func (f *fakeStore) CreateComment(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	stored := *c
	f.comments = append(f.comments, &stored)
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, id string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (f *fakeStore) ListBySnippet(_ context.Context, snippetID string) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Comment, 0)
	for _, c := range slices.Backward(f.comments) {
		if c.SnippetID == snippetID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := len(f.comments)
	f.comments = slices.DeleteFunc(f.comments, func(c *model.Comment) bool { return c.ID == id })
	if len(f.comments) == before {
		return apperror.NotFound("comment", id)
	}
	return nil
}

// --- executions ---

func (f *fakeStore) CreateExecution(_ context.Context, rec *model.ExecutionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	rec.ID = f.id()
	stored := *rec
	f.executions = append(f.executions, &stored)
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]model.ExecutionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ExecutionRecord, 0)
	for _, r := range slices.Backward(f.executions) {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

var errDBDown = errors.New("database is locked")
