package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/membersonly/forum/internal/mq"
	"github.com/membersonly/forum/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingPruner struct {
	calls atomic.Int64
}

func (p *countingPruner) Prune(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return 0, nil
}

func newTestServer(t *testing.T, pruner sessionPruner, interval time.Duration) *Server {
	t.Helper()
	logger := testutil.MakeNoopLogger()
	s := &Server{
		httpServer:    &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()},
		router:        chi.NewRouter(),
		sessions:      pruner,
		events:        mq.NewPublisher(nil, "forum.activity", logger),
		logger:        logger,
		pruneInterval: interval,
	}
	s.startPruning()
	return s
}

func TestServer_StartThenShutdown(t *testing.T) {
	pruner := &countingPruner{}
	s := newTestServer(t, pruner, time.Millisecond)

	started := make(chan error, 1)
	go func() {
		started <- s.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-started:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	stopped := pruner.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, pruner.calls.Load())
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s := newTestServer(t, &countingPruner{}, time.Hour)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Start())
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestMiddlewares_LogRecoveredPanicStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	router := chi.NewRouter()
	router.Use(middlewares(zap.New(core))...)
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusInternalServerError, entries[0].ContextMap()["status"])
}
