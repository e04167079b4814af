package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("GET", "/todos", "200", 0.01)
	m.RecordHTTPRequest("GET", "/todos", "200", 0.02)
	m.RecordChallenge("GET_TODOS")
	m.RecordAuthToken("issued")
	m.RecordRateLimited()
	m.SetRegistryStats(3, 27)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/todos", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChallengesCompletedTotal.WithLabelValues("GET_TODOS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthTokensTotal.WithLabelValues("issued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 27.0, testutil.ToFloat64(m.TodosStored))
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordChallenge("POST_TODOS")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `apichallenges_challenges_completed_total{challenge="POST_TODOS"} 1`))
}

type fakeStats struct {
	sessions atomic.Int64
}

func (f *fakeStats) Stats() (int, int) {
	n := int(f.sessions.Load())
	return n, n * 10
}

func TestStartRegistryReporter(t *testing.T) {
	m := NewMetrics()
	src := &fakeStats{}
	src.sessions.Store(2)

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRegistryReporter(ctx, src, m, 10*time.Millisecond, zap.New(core))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.SessionsActive) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 20.0, testutil.ToFloat64(m.TodosStored))

	src.sessions.Store(3)
	require.Eventually(t, func() bool {
		return logs.FilterMessage("session registry stats").Len() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	unchanged := logs.Len()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, unchanged, logs.Len())
}

func TestStartRegistryReporter_CancelBeforeTick(t *testing.T) {
	m := NewMetrics()
	src := &fakeStats{}
	src.sessions.Store(5)

	ctx, cancel := context.WithCancel(context.Background())
	StartRegistryReporter(ctx, src, m, 100*time.Millisecond, zap.NewNop())
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, testutil.ToFloat64(m.SessionsActive))
}
