package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusBody struct {
	Status string
	Checks map[string]string
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusBody {
	t.Helper()
	body := statusBody{Checks: map[string]string{}}
	err := jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			v, err := d.Str()
			body.Status = v
			return err
		case "checks":
			return d.Obj(func(d *jx.Decoder, name string) error {
				v, err := d.Str()
				body.Checks[name] = v
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return body
}

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func probe(h *Health, endpoint func(http.ResponseWriter, *http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		runs       int
		opts       []Option
		wantStatus int
	}{
		{name: "BelowThreshold", runs: 2, wantStatus: http.StatusOK},
		{name: "AtThreshold", runs: 3, wantStatus: http.StatusServiceUnavailable},
		{name: "CustomThreshold", runs: 1, opts: []Option{WithThresholds(1, 1)}, wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.Add(Liveness, "db", time.Second, failing("connection refused"), tt.opts...)
			for range tt.runs {
				_ = h.checks[Liveness][0].run(ctx)
			}

			w := probe(h, h.LiveEndpoint)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.wantStatus != http.StatusOK {
				body := decodeStatus(t, w)
				assert.Equal(t, "unhealthy", body.Status)
				assert.Equal(t, "connection refused", body.Checks["db"])
			}
		})
	}
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	h := New()
	w := probe(h, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeStatus(t, w).Status)
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.Add(Readiness, "postgres", time.Second, passing)

	w := probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service is not ready", decodeStatus(t, w).Checks["_readiness"])

	h.SetReady(true)
	w = probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, probe(h, h.ReadyEndpoint).Code)
	assert.False(t, h.IsReady())
}

func TestReadyEndpoint_OneFailing(t *testing.T) {
	h := New()
	h.Add(Readiness, "postgres", time.Second, passing)
	h.Add(Readiness, "redis", time.Second, failing("dial tcp: refused"), WithThresholds(1, 1))
	h.SetReady(true)

	require.Error(t, h.Warmup(context.Background()))

	w := probe(h, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeStatus(t, w)
	assert.Equal(t, map[string]string{"redis": "dial tcp: refused"}, body.Checks)
	assert.False(t, h.IsReady())
}

func TestWarmup_RunsAllReadinessChecks(t *testing.T) {
	h := New()
	var calls atomic.Int32
	count := func(context.Context) error {
		calls.Add(1)
		return nil
	}
	h.Add(Readiness, "a", time.Second, count)
	h.Add(Readiness, "b", time.Second, count)
	h.Add(Liveness, "c", time.Second, count)

	require.NoError(t, h.Warmup(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestCheckRecovery(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	h := New()
	h.Add(Readiness, "flaky", time.Second, func(context.Context) error {
		if broken.Load() {
			return errors.New("down")
		}
		return nil
	}, WithThresholds(1, 2))
	h.SetReady(true)
	c := h.checks[Readiness][0]
	ctx := context.Background()

	_ = c.run(ctx)
	assert.False(t, h.IsReady())

	broken.Store(false)
	_ = c.run(ctx)
	assert.False(t, h.IsReady(), "needs two successes")
	_ = c.run(ctx)
	assert.True(t, h.IsReady())
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.Add(Readiness, "slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithThresholds(1, 1))

	err := h.Warmup(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartStop(t *testing.T) {
	h := New()
	var calls atomic.Int32
	h.Add(Liveness, "tick", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	h.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.Add(Readiness, "a", time.Second, passing)
	h.SetReady(true)
	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = probe(h, h.ReadyEndpoint)
			_ = h.IsReady()
		}()
	}
	wg.Wait()
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckers(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))

	want := errors.New("no route")
	assert.ErrorIs(t, PingCheck(pingerFunc(func(context.Context) error { return want }))(context.Background()), want)
}
