package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/codecraft/internal/auth"
	"github.com/sakif/codecraft/internal/handler"
	"github.com/sakif/codecraft/internal/repository/sqlite"
	"github.com/sakif/codecraft/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const testJWTSecret = "handler-test-secret-32-characters"

// testAPI is the snippet/execution/user API on an in-memory database,
// routed the same way the server routes it.
type testAPI struct {
	router http.Handler
	db     *sqlite.DB
	tokens *auth.TokenService
	users  *service.UserService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testJWTSecret)
	require.NoError(t, err)

	users := service.NewUserService(db, discard)
	snippets := handler.NewSnippetHandler(service.NewSnippetService(db, db, db, db, discard), discard)
	executions := handler.NewExecutionHandler(service.NewExecutionService(db, db, discard), discard)
	me := handler.NewUserHandler(users, discard)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/api/snippets", snippets.HandleList)
		r.Get("/api/snippets/{id}", snippets.HandleGet)
		r.Get("/api/snippets/{id}/stars", snippets.HandleStarCount)
		r.Get("/api/snippets/{id}/starred", snippets.HandleIsStarred)
		r.Get("/api/snippets/{id}/comments", snippets.HandleListComments)
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/api/snippets", snippets.HandleCreate)
		r.Delete("/api/snippets/{id}", snippets.HandleDelete)
		r.Post("/api/snippets/{id}/star", snippets.HandleStar)
		r.Post("/api/snippets/{id}/comments", snippets.HandleAddComment)
		r.Delete("/api/comments/{id}", snippets.HandleDeleteComment)
		r.Post("/api/executions", executions.HandleSave)
		r.Get("/api/executions", executions.HandleList)
		r.Get("/api/me", me.HandleMe)
	})

	return &testAPI{router: r, db: db, tokens: tokens, users: users}
}

// user syncs a user and returns a bearer token for them.
func (a *testAPI) user(t *testing.T, userID, name string, pro bool) string {
	t.Helper()
	ctx := t.Context()
	_, err := a.users.SyncUser(ctx, userID, userID+"@example.com", name)
	require.NoError(t, err)
	if pro {
		require.NoError(t, a.db.SetPro(ctx, userID, true))
	}
	token, err := a.tokens.Generate(userID, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request; token may be empty for anonymous calls.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
