package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/codecraft/internal/apperror"
)

func newTestSnippetService() (*SnippetService, *fakeStore) {
	store := newFakeStore()
	return NewSnippetService(store, store, store, store, discardLogger), store
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateSnippet(t *testing.T) {
	svc, store := newTestSnippetService()
	store.addUser("user_1", "Ada Lovelace", false)
	ctx := context.Background()

	snippet, err := svc.CreateSnippet(ctx, "user_1", "  Hello  ", "python", "print('hi')")
	if err != nil {
		t.Fatalf("CreateSnippet() error = %v", err)
	}
	if snippet.ID == "" {
		t.Fatal("CreateSnippet() returned empty ID")
	}

	// The new snippet shows up in the listing with the denormalized name.
	list, err := svc.GetSnippets(ctx)
	if err != nil {
		t.Fatalf("GetSnippets() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("GetSnippets() returned %d, want 1", len(list))
	}
	got := list[0]
	if got.ID != snippet.ID || got.Title != "Hello" || got.Language != "python" || got.Code != "print('hi')" {
		t.Errorf("listed snippet = %+v", got)
	}
	if got.UserName != "Ada Lovelace" {
		t.Errorf("UserName = %q, want %q", got.UserName, "Ada Lovelace")
	}
	if got.UserID != "user_1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "user_1")
	}
}

func TestCreateSnippet_Errors(t *testing.T) {
	tests := []struct {
		name     string
		callerID string
		title    string
		language string
		code     string
		wantErr  error
	}{
		{"anonymous", "", "t", "python", "x", apperror.ErrUnauthorized},
		{"no user record", "ghost", "t", "python", "x", apperror.ErrNotFound},
		{"blank title", "user_1", "   ", "python", "x", apperror.ErrValidation},
		{"long title", "user_1", strings.Repeat("a", MaxSnippetTitleLength+1), "python", "x", apperror.ErrValidation},
		{"missing language", "user_1", "t", "", "x", apperror.ErrValidation},
		{"unknown language", "user_1", "t", "brainfuck", "x", apperror.ErrValidation},
		{"code too long", "user_1", "t", "python", strings.Repeat("a", MaxCodeLength+1), apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestSnippetService()
			store.addUser("user_1", "Ada", false)

			_, err := svc.CreateSnippet(context.Background(), tt.callerID, tt.title, tt.language, tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSnippet() error = %v, want %v", err, tt.wantErr)
			}
			if len(store.snippets) != 0 {
				t.Errorf("snippet inserted despite error")
			}
		})
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestGetSnippets_NewestFirst(t *testing.T) {
	svc, store := newTestSnippetService()
	store.addUser("user_1", "Ada", false)
	ctx := context.Background()

	first, _ := svc.CreateSnippet(ctx, "user_1", "first", "go", "")
	second, _ := svc.CreateSnippet(ctx, "user_1", "second", "go", "")

	list, err := svc.GetSnippets(ctx)
	if err != nil {
		t.Fatalf("GetSnippets() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("GetSnippets() order wrong: %+v", list)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

// seedSnippetWithActivity creates a snippet owned by "owner" with one star
// and one comment from "fan".
func seedSnippetWithActivity(t *testing.T, svc *SnippetService, store *fakeStore) string {
	t.Helper()
	ctx := context.Background()
	store.addUser("owner", "Owner", false)
	store.addUser("fan", "Fan", false)

	snippet, err := svc.CreateSnippet(ctx, "owner", "mine", "javascript", "1")
	if err != nil {
		t.Fatalf("CreateSnippet() error = %v", err)
	}
	if _, err := svc.StarSnippet(ctx, "fan", snippet.ID); err != nil {
		t.Fatalf("StarSnippet() error = %v", err)
	}
	if _, err := svc.AddComment(ctx, "fan", snippet.ID, "nice"); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	return snippet.ID
}

func TestDeleteSnippet_NonOwnerLeavesEverything(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	err := svc.DeleteSnippet(ctx, "fan", id)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("DeleteSnippet() error = %v, want ErrForbidden", err)
	}

	if _, err := svc.GetSnippet(ctx, id); err != nil {
		t.Errorf("snippet gone after refused delete: %v", err)
	}
	if n, _ := svc.GetSnippetStarCount(ctx, id); n != 1 {
		t.Errorf("star count = %d, want 1", n)
	}
	if comments, _ := svc.GetComments(ctx, id); len(comments) != 1 {
		t.Errorf("comments = %d, want 1", len(comments))
	}
}

func TestDeleteSnippet_OwnerCascades(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	if err := svc.DeleteSnippet(ctx, "owner", id); err != nil {
		t.Fatalf("DeleteSnippet() error = %v", err)
	}

	if _, err := svc.GetSnippet(ctx, id); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSnippet() after delete error = %v, want ErrNotFound", err)
	}
	if n, err := svc.GetSnippetStarCount(ctx, id); err != nil || n != 0 {
		t.Errorf("GetSnippetStarCount() = %d, %v; want 0, nil", n, err)
	}
	if comments, _ := svc.GetComments(ctx, id); len(comments) != 0 {
		t.Errorf("comments = %d, want 0", len(comments))
	}
}

func TestDeleteSnippet_Errors(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	if err := svc.DeleteSnippet(ctx, "", id); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("anonymous DeleteSnippet() error = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteSnippet(ctx, "owner", "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteSnippet(missing) error = %v, want ErrNotFound", err)
	}

	store.failDelete = errDBDown
	err := svc.DeleteSnippet(ctx, "owner", id)
	if err == nil || !strings.Contains(err.Error(), "delete failed") {
		t.Errorf("DeleteSnippet() with failing store error = %v, want delete failed", err)
	}
	if !errors.Is(err, errDBDown) {
		t.Errorf("DeleteSnippet() error does not wrap cause: %v", err)
	}
	if _, err := svc.GetSnippet(ctx, id); err != nil {
		t.Errorf("snippet gone after failed delete: %v", err)
	}
}

// =========================================================================
// STAR TESTS
// =========================================================================

func TestStarSnippet_ToggleTwiceRestores(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	store.addUser("owner", "Owner", false)
	snippet, _ := svc.CreateSnippet(ctx, "owner", "s", "go", "")

	starred, err := svc.StarSnippet(ctx, "fan", snippet.ID)
	if err != nil || !starred {
		t.Fatalf("first StarSnippet() = %v, %v; want true, nil", starred, err)
	}
	if ok, _ := svc.IsSnippetStarred(ctx, "fan", snippet.ID); !ok {
		t.Error("IsSnippetStarred() = false after star")
	}

	starred, err = svc.StarSnippet(ctx, "fan", snippet.ID)
	if err != nil || starred {
		t.Fatalf("second StarSnippet() = %v, %v; want false, nil", starred, err)
	}
	if ok, _ := svc.IsSnippetStarred(ctx, "fan", snippet.ID); ok {
		t.Error("IsSnippetStarred() = true after unstar")
	}
	if n, _ := svc.GetSnippetStarCount(ctx, snippet.ID); n != 0 {
		t.Errorf("star count = %d, want 0", n)
	}
}

func TestStarSnippet_Errors(t *testing.T) {
	svc, _ := newTestSnippetService()
	ctx := context.Background()

	if _, err := svc.StarSnippet(ctx, "", "x"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("anonymous StarSnippet() error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.StarSnippet(ctx, "fan", "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("StarSnippet(missing) error = %v, want ErrNotFound", err)
	}
}

func TestIsSnippetStarred_Anonymous(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	ok, err := svc.IsSnippetStarred(ctx, "", id)
	if err != nil || ok {
		t.Errorf("IsSnippetStarred(anonymous) = %v, %v; want false, nil", ok, err)
	}

	status, err := svc.GetStarStatus(ctx, "fan", id)
	if err != nil {
		t.Fatalf("GetStarStatus() error = %v", err)
	}
	if !status.Starred || status.Count != 1 {
		t.Errorf("GetStarStatus() = %+v", status)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestComments(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	second, err := svc.AddComment(ctx, "owner", id, "thanks")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if second.UserName != "Owner" {
		t.Errorf("UserName = %q, want %q", second.UserName, "Owner")
	}

	comments, err := svc.GetComments(ctx, id)
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(comments) != 2 || comments[0].ID != second.ID {
		t.Errorf("GetComments() not newest first: %+v", comments)
	}

	if err := svc.DeleteComment(ctx, "fan", second.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("DeleteComment() by non-author error = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteComment(ctx, "owner", second.ID); err != nil {
		t.Errorf("DeleteComment() error = %v", err)
	}
	if err := svc.DeleteComment(ctx, "owner", second.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteComment() twice error = %v, want ErrNotFound", err)
	}
}

func TestAddComment_Errors(t *testing.T) {
	svc, store := newTestSnippetService()
	ctx := context.Background()
	id := seedSnippetWithActivity(t, svc, store)

	tests := []struct {
		name     string
		callerID string
		snippet  string
		content  string
		wantErr  error
	}{
		{"anonymous", "", id, "hi", apperror.ErrUnauthorized},
		{"blank", "fan", id, "   ", apperror.ErrValidation},
		{"too long", "fan", id, strings.Repeat("x", MaxCommentLength+1), apperror.ErrValidation},
		{"unknown snippet", "fan", "missing", "hi", apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddComment(ctx, tt.callerID, tt.snippet, tt.content); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddComment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
