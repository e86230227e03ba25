package metric

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simkit/internal/trace"
)

func TestRecord_CountsByKind(t *testing.T) {
	m := New()

	events := []trace.Event{
		{Kind: trace.KindTick},
		{Kind: trace.KindTick},
		{Kind: trace.KindSent, Receiver: 2},
		{Kind: trace.KindScheduled, Receiver: 2},
		{Kind: trace.KindScheduled, Receiver: 2},
		{Kind: trace.KindSuppressed, Receiver: 2},
		{Kind: trace.KindDelivered, Receiver: 2},
		{Kind: trace.KindUnhandled, Receiver: 1},
		{Kind: trace.KindTransition, Entity: 1, To: "EatStew"},
		{Kind: trace.KindTransition, Entity: 1, To: "EatStew"},
	}
	for _, ev := range events {
		m.Record(ev)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sent.WithLabelValues("immediate")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Sent.WithLabelValues("delayed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Suppressed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Delivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unhandled.WithLabelValues("1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("1", "EatStew")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Record(trace.Event{Kind: trace.KindTick})

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Ticks))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Ticks))
}

func TestTrackQueueDepth(t *testing.T) {
	m := New()
	depth := 3
	require.NoError(t, m.TrackQueueDepth(func() int { return depth }))

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "simkit_queue_depth" {
			found = true
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found, "queue depth gauge should be registered")

	assert.Error(t, m.TrackQueueDepth(func() int { return 0 }), "second registration conflicts")
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.Record(trace.Event{Kind: trace.KindTick})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "simkit_ticks_total 1")
}

func TestServer_ServesUntilCancelled(t *testing.T) {
	m := New()
	s, err := Listen("127.0.0.1:0", m, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + s.Addr() + "/health")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
