package lifecycle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/marmos91/hatch/internal/logger"
	"github.com/marmos91/hatch/internal/telemetry"
	"github.com/marmos91/hatch/pkg/httpserver"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries returns the JSON log lines whose msg equals msg.
func (b *syncBuffer) entries(t *testing.T, msg string) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry["msg"] == msg {
			out = append(out, entry)
		}
	}
	return out
}

func captureJSONLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	logger.InitWithWriter(buf, "DEBUG", "json", false)
	t.Cleanup(func() { logger.InitWithWriter(os.Stdout, "INFO", "text", false) })
	return buf
}

func useRecordingTracer(t *testing.T) {
	t.Helper()
	provider := sdktrace.NewTracerProvider()
	telemetry.UseTracerProvider(provider)
	t.Cleanup(func() {
		_, _ = telemetry.Init(context.Background(), telemetry.Config{})
		_ = provider.Shutdown(context.Background())
	})
}

func TestLifecycleLogsCarryTraceAndService(t *testing.T) {
	logs := captureJSONLogs(t)
	useRecordingTracer(t)

	var initTraceID string
	inits := []Initializer{
		func(ctx context.Context, _ *httpserver.App) (Handle, error) {
			initTraceID = logger.FromContext(ctx).TraceID
			return Closeable("db", func(context.Context) error { return nil }), nil
		},
	}

	r := &Runner{Mode: Sequential}
	set, err := r.Run(context.Background(), httpserver.NewApp(), inits)
	require.NoError(t, err)
	require.NoError(t, set.Shutdown(context.Background()))

	assert.NotEmpty(t, initTraceID, "initializer context carries the start span")

	for _, msg := range []string{"Service started", "Service released"} {
		entries := logs.entries(t, msg)
		require.Len(t, entries, 1, msg)
		assert.Equal(t, "db", entries[0][logger.KeyService], msg)
		assert.NotEmpty(t, entries[0][logger.KeyTraceID], msg)
		assert.NotEmpty(t, entries[0][logger.KeySpanID], msg)
	}

	started := logs.entries(t, "Service started")[0]
	assert.Equal(t, initTraceID, started[logger.KeyTraceID])
}

func TestCoordinatorLogsCarryTrace(t *testing.T) {
	logs := captureJSONLogs(t)
	useRecordingTracer(t)

	c := NewCoordinator(&fakeServer{}, NewServiceSet(Sequential, nil), 0)
	require.NoError(t, c.Shutdown("test"))

	entries := logs.entries(t, "Server gracefully shut down")
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0][logger.KeyTraceID])
	assert.NotEmpty(t, entries[0][logger.KeySpanID])
}
