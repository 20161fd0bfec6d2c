package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordAndRecent(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.Record(ctx, Entry{
		SessionID: "s1", StartedAt: start, Duration: 1500 * time.Millisecond, Outcome: "success",
	}))
	require.NoError(t, j.Record(ctx, Entry{
		SessionID: "s1", StartedAt: start.Add(time.Minute), Duration: 20 * time.Millisecond,
		Outcome: "service", StatusCode: 500, Detail: "boom",
	}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "service", entries[0].Outcome)
	assert.Equal(t, 500, entries[0].StatusCode)
	assert.Equal(t, "boom", entries[0].Detail)
	assert.Equal(t, 20*time.Millisecond, entries[0].Duration)

	assert.Equal(t, "success", entries[1].Outcome)
	assert.True(t, start.Equal(entries[1].StartedAt))
}

func TestInitLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := InitLogger(dir, true)
	require.NoError(t, err)

	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "legalchat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestInitTelemetry_Disabled(t *testing.T) {
	tracer, meter, cleanup, err := InitTelemetry(context.Background(), t.TempDir(), false)
	require.NoError(t, err)
	defer cleanup()

	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	_, err = meter.Int64Counter("noop")
	assert.NoError(t, err)
}
