package preview

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scribe-press/scribe/internal/buildlog"
)

func startTestServer(t *testing.T, dir string, port int) *Server {
	t.Helper()
	s := NewServer(dir, AccessPrivate, port, nil)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

type fakeHistory struct{}

func (fakeHistory) Recent(_ context.Context, _ int) ([]buildlog.Record, error) {
	return []buildlog.Record{
		{ID: "b1", Target: "web", Format: "html", Started: time.Now(), Duration: time.Second, Success: true},
	}, nil
}

func TestNoCacheHeadersOnEveryResponse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))

	s := startTestServer(t, dir, 0)

	for _, path := range []string{"/", "/index.html", "/missing.html", "/status", "/metrics"} {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", s.Addr(), path))
		require.NoError(t, err, path)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		require.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"), path)
		require.Equal(t, "no-cache", resp.Header.Get("Pragma"), path)
		require.Equal(t, "0", resp.Header.Get("Expires"), path)
	}
}

func TestServesBuiltOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello preview"), 0o644))

	s := startTestServer(t, dir, 0)

	resp, err := http.Get(s.URL() + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hello preview", string(body))
}

func TestStartStopCyclesReusePort(t *testing.T) {
	dir := t.TempDir()

	// Grab a free port, then start/stop repeatedly on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	for i := 0; i < 3; i++ {
		s := NewServer(dir, AccessPrivate, port, nil)
		require.NoError(t, s.Start(context.Background()), "cycle %d", i)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		require.NoError(t, s.Stop(ctx), "cycle %d", i)
		cancel()
	}
}

func TestPrivateBindIsLoopbackOnly(t *testing.T) {
	s := startTestServer(t, t.TempDir(), 0)
	host, _, err := net.SplitHostPort(s.Addr())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", host)
}

func TestStatusPageWithHistory(t *testing.T) {
	dir := t.TempDir()
	s := NewServer(dir, AccessPrivate, 0, nil)
	s.SetHistory(fakeHistory{})
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	resp, err := http.Get(s.URL() + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Recent builds")
	require.Contains(t, string(body), "web")
}
