//go:build unix

package bootstrap

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/pkg/httpserver"
	"github.com/marmos91/hatch/pkg/lifecycle"
)

// timeline interleaves log lines with service events.
type timeline struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	events []string
}

func (tl *timeline) Write(p []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.buf.Write(p)
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		tl.events = append(tl.events, "log: "+line)
	}
	return len(p), nil
}

func (tl *timeline) add(e string) {
	tl.mu.Lock()
	tl.events = append(tl.events, e)
	tl.mu.Unlock()
}

func (tl *timeline) indexOf(substr string) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for i, e := range tl.events {
		if strings.Contains(e, substr) {
			return i
		}
	}
	return -1
}

func (tl *timeline) indexOfEvent(e string) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for i, got := range tl.events {
		if got == e {
			return i
		}
	}
	return -1
}

func (tl *timeline) count(substr string) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	n := 0
	for _, e := range tl.events {
		if e == substr {
			n++
		}
	}
	return n
}

func TestTerminationSignalClosesServiceOnce(t *testing.T) {
	// Keep SIGTERM caught after the coordinator unsubscribes.
	guard := make(chan os.Signal, 4)
	signal.Notify(guard, syscall.SIGTERM)
	t.Cleanup(func() { signal.Stop(guard) })

	tl := &timeline{}
	logger.InitWithWriter(tl, "INFO", "text", false)
	t.Cleanup(func() { logger.InitWithWriter(os.Stdout, "INFO", "text", false) })

	closeOnly := func(context.Context, *httpserver.App) (lifecycle.Handle, error) {
		return lifecycle.Closeable("db", func(context.Context) error {
			tl.add("close")
			return nil
		}), nil
	}

	res, err := New(testConfig(t, false), helloApp(), closeOnly).Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-res.Shutdown.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("SIGTERM did not trigger shutdown")
	}

	assert.Equal(t, 1, tl.count("close"))
	closeAt := tl.indexOfEvent("close")
	doneAt := tl.indexOf("Server gracefully shut down")
	require.NotEqual(t, -1, doneAt)
	assert.Less(t, closeAt, doneAt, "close must run before completion is logged")
	assert.Less(t, tl.indexOf("Received shutdown notice"), closeAt)
	assert.NoError(t, res.Shutdown.Err())
}
