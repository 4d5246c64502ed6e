package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshharrison/critpath/internal/cpm"
)

func TestRun_ServesUntilCancelled(t *testing.T) {
	srv := New("127.0.0.1:0", cpm.Config{}, log.New(io.Discard, "", 0))
	require.Empty(t, srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post("http://"+srv.Addr()+"/v1/schedule", "application/json",
		strings.NewReader(`[{"id":"a","duration":2},{"id":"b","duration":1,"predecessors":["a"]}]`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	srv := New("256.0.0.1:0", cpm.Config{}, log.New(io.Discard, "", 0))

	err := srv.Run(context.Background())
	require.ErrorContains(t, err, "listen on 256.0.0.1:0")
}
