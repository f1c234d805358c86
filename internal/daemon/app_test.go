package daemon

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mggg/votekit/internal/api"
	"github.com/mggg/votekit/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// net/http keeps idle transport connections in a background goroutine.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitForOK(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("endpoint %s never became ready", url)
}

func TestAppServesAndShutsDown(t *testing.T) {
	cfg := config.Defaults()
	cfg.Listen = freeAddr(t)
	cfg.MetricsListen = freeAddr(t)
	cfg.DataDir = t.TempDir()
	cfg.ShutdownGrace = 2 * time.Second

	app := NewApp(cfg, api.NewServer(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	waitForOK(t, fmt.Sprintf("http://%s/healthz", cfg.Listen))
	waitForOK(t, fmt.Sprintf("http://%s/metrics", cfg.MetricsListen))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down within the grace period")
	}

	http.DefaultClient.CloseIdleConnections()
}

func TestAppFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := config.Defaults()
	cfg.Listen = l.Addr().String() // already taken
	cfg.MetricsListen = freeAddr(t)
	cfg.DataDir = t.TempDir()

	app := NewApp(cfg, api.NewServer(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = app.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
}
