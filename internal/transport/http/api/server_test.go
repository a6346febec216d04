package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"examrecord/internal/auth"
	"examrecord/internal/config"
	"examrecord/internal/gateway/wikidata"
	"examrecord/internal/report"
	"examrecord/internal/resolver"
	"examrecord/internal/store/gormstore"
	"examrecord/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuthority struct{}

func (staticAuthority) ComposerByID(ctx context.Context, id string) (*wikidata.Entity, error) {
	return &wikidata.Entity{WikidataID: id, Name: "Authority Composer"}, nil
}

type testEnv struct {
	server *Server
	store  *gormstore.Store
	event  *model.ExamEvent
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store, err := gormstore.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.UpsertRegion(ctx, &model.Region{Name: "Andalucía", Slug: "andalucia"}))
	require.NoError(t, store.UpsertDiscipline(ctx, &model.Discipline{Name: "Piano", Slug: "piano"}))
	region, err := store.RegionBySlug(ctx, "andalucia")
	require.NoError(t, err)
	discipline, err := store.DisciplineBySlug(ctx, "piano")
	require.NoError(t, err)
	event := &model.ExamEvent{Year: 2026, RegionID: region.ID, DisciplineID: discipline.ID}
	require.NoError(t, store.CreateEvent(ctx, event))

	authService := auth.NewService(store,
		auth.NewTokenIssuer(config.AuthConfig{Secret: "test-secret", TokenTTLMinutes: 5}),
		"guest@examrecord.local")
	reportService := report.NewService(store, resolver.New(staticAuthority{}), config.PolicyConfig{})

	router := &Router{
		Reports:          reportService,
		Auth:             authService,
		Store:            store,
		MaxSearchResults: 20,
	}
	server, err := NewServer(":0", router, authService)
	require.NoError(t, err)
	return &testEnv{server: server, store: store, event: event}
}

func (e *testEnv) do(t *testing.T, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/guest", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitReport_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":1,"composer":{"name":"Bach"},"work":{"title":"Prelude"}}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitReport_CreateThenCorroborate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	payload := `{"event_id":1,"composer":{"name":"Bach"},"work":{"title":"Prelude A"},"scope":"Movement","movement_details":"Allegro"}`
	rec := env.do(t, http.MethodPost, "/api/reports", payload, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "created", created.Status)
	assert.NotZero(t, created.ID)

	// Same (event, work) pair again, by local work id this time.
	works, err := env.store.SearchWorks(context.Background(), "Prelude A", 10)
	require.NoError(t, err)
	require.Len(t, works, 1)
	rec = env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":1,"composer":{"name":"Bach"},"work":{"id":`+jsonUint(works[0].ID)+`}}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var second struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "corroborated", second.Status)
	assert.Equal(t, created.ID, second.ID)
}

func TestSubmitReport_BadInputAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":1,"composer":{},"work":{"title":"Prelude"}}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "composer identification required")

	rec = env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":999,"composer":{"name":"Bach"},"work":{"title":"Prelude"}}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "event not found")
}

func TestVote_SoftAuthSignal(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":1,"composer":{"name":"Bach"},"work":{"title":"Prelude A"}}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Anonymous vote: no mutation, current state plus the auth marker.
	rec = env.do(t, http.MethodPost, "/api/reports/"+jsonUint(created.ID)+"/vote", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var soft struct {
		AuthRequired bool `json:"auth_required"`
		Event        struct {
			TotalVotes int `json:"total_votes"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &soft))
	assert.True(t, soft.AuthRequired)
	assert.Equal(t, 1, soft.Event.TotalVotes)

	// Authenticated vote mutates and returns the refreshed event.
	rec = env.do(t, http.MethodPost, "/api/reports/"+jsonUint(created.ID)+"/vote", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var hard struct {
		AuthRequired bool `json:"auth_required"`
		Event        struct {
			TotalVotes int `json:"total_votes"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hard))
	assert.False(t, hard.AuthRequired)
	assert.Equal(t, 2, hard.Event.TotalVotes)
}

func TestFlag(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/reports",
		`{"event_id":1,"composer":{"name":"Bach"},"work":{"title":"Prelude A"}}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/api/reports/"+jsonUint(created.ID)+"/flag", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_flagged":true`)

	rec = env.do(t, http.MethodPost, "/api/reports/999/flag", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewEvent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/events/andalucia/piano/2026", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"empty"`)

	// Unknown triple parts are 404s, not lazily created.
	rec = env.do(t, http.MethodGet, "/api/events/atlantis/piano/2026", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/events/andalucia/piano/bad-year", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposerSearch_Local(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.CreateComposer(ctx, &model.Composer{Name: "Johann Sebastian Bach"}))

	rec := env.do(t, http.MethodGet, "/api/composers/search?q=bach", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Johann Sebastian Bach")

	rec = env.do(t, http.MethodGet, "/api/composers/search?q=b", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/composers/search?q=bach&source=sideways", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.login(t)
	rec = env.do(t, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "guest@examrecord.local")
}

func jsonUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
