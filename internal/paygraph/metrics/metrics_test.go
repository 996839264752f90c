package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCounters(t *testing.T) {
	EventsTotal.WithLabelValues("m-test", "in_order").Add(3)
	EventsTotal.WithLabelValues("m-test", "stale_rejected").Inc()
	assert.Equal(t, 3.0, testutil.ToFloat64(EventsTotal.WithLabelValues("m-test", "in_order")))

	expected := `
# HELP paygraph_events_total Payments processed, by window transition
# TYPE paygraph_events_total counter
paygraph_events_total{stream="m-test",transition="in_order"} 3
paygraph_events_total{stream="m-test",transition="stale_rejected"} 1
`
	// other tests in the package add no events, so the whole vec is compared
	require.NoError(t, testutil.CollectAndCompare(EventsTotal, strings.NewReader(expected), "paygraph_events_total"))
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServe(t *testing.T) {
	MedianDegree.WithLabelValues("serve-test").Set(1.5)

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, zap.NewNop().Sugar()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, `paygraph_median_degree{stream="serve-test"} 1.5`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
