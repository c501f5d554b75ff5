package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	membershipadapter "vocabhub/internal/modules/membership/adapter/out"
	sessionadapter "vocabhub/internal/modules/session/adapter/out"
	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/platform/clock"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/httpx"
	"vocabhub/internal/platform/id"
	"vocabhub/internal/platform/identity"
	"vocabhub/internal/platform/sqlitedb"
	"vocabhub/internal/server"
)

const token = "secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "vocabhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := sessionadapter.NewSQLiteStore(ctx, db, clock.SystemClock{}, id.UUID{})
	require.NoError(t, err)
	_, err = store.ImportDeck(ctx, []domain.DeckWord{
		{Word: "apple", Definition: "a round fruit", Level: 1},
		{Word: "quixotic", Definition: "unrealistically idealistic", Level: 5},
	})
	require.NoError(t, err)
	saved, err := membershipadapter.NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	srv := server.New("127.0.0.1:0", token, server.Gateways{
		Study:      sessionadapter.NewLocalStudyGateway(store),
		Assessment: sessionadapter.NewLocalAssessmentGateway(store),
		Saved:      saved,
	}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func client(ts *httptest.Server, tok string) *httpx.Client {
	return httpx.NewClient(ts.URL, 5*time.Second, identity.NewStatic(tok))
}

func TestStudySessionOverHTTP(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	gw := sessionadapter.NewHTTPStudyGateway(client(ts, token))
	ctx := context.Background()

	loaded, err := gw.Load(ctx, "", domain.LoadParams{ModeFilter: "new"})
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 2)
	assert.NotEmpty(t, loaded.SessionID)
	assert.Equal(t, 2, loaded.Metadata["new"])
	assert.Equal(t, domain.CardNew, loaded.Entries[0].Payload.State)

	res, err := gw.Submit(ctx, "", loaded.SessionID, loaded.Entries[0].ID, domain.StudyResponse{Mode: domain.ModeReveal, Grade: domain.GradeKnown})
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	res, err = gw.Submit(ctx, "", loaded.SessionID, "not-in-session", domain.StudyResponse{Mode: domain.ModeReveal, Grade: domain.GradeKnown})
	require.NoError(t, err)
	assert.False(t, res.Accepted)

	ok, err := gw.Abandon(ctx, "", loaded.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssessmentReportsAggregateOnLastSubmit(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	gw := sessionadapter.NewHTTPAssessmentGateway(client(ts, token))
	ctx := context.Background()

	loaded, err := gw.Load(ctx, "", domain.LoadParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 2)

	first, err := gw.Submit(ctx, "", loaded.SessionID, loaded.Entries[0].ID, domain.AssessmentResponse{Recognition: domain.Recognized})
	require.NoError(t, err)
	assert.Empty(t, first.Aggregate)

	last, err := gw.Submit(ctx, "", loaded.SessionID, loaded.Entries[1].ID, domain.AssessmentResponse{Recognition: domain.NotRecognized})
	require.NoError(t, err)
	assert.True(t, last.Accepted)
	assert.Contains(t, last.Aggregate, domain.AggregateEstimate)
}

func TestSavedWordsOverHTTP(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	gw := membershipadapter.NewHTTPGateway(client(ts, token))
	ctx := context.Background()

	ids, err := gw.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, gw.Add(ctx, "", "w-1"))
	require.NoError(t, gw.Add(ctx, "", "w-2"))
	require.NoError(t, gw.Remove(ctx, "", "w-1"))

	ids, err = gw.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"w-2"}, ids)
}

func TestRejectsBadCredential(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	gw := sessionadapter.NewHTTPStudyGateway(client(ts, "wrong"))

	_, err := gw.Load(context.Background(), "", domain.LoadParams{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated), "got %v", err)
}

func TestInvalidFilterIsRejected(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	gw := sessionadapter.NewHTTPStudyGateway(client(ts, token))

	_, err := gw.Load(context.Background(), "", domain.LoadParams{ModeFilter: "sideways"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindRejected), "got %v", err)
}

func TestHealthNeedsNoCredential(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
