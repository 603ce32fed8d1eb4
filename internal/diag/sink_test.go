package diag

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/filedock/pkg/journal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSink_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))
	ctx := context.Background()

	sink.Emit(ctx, journal.Event{Kind: journal.KindNoHandler, Locator: "/a", MIME: "x/y"})
	sink.Emit(ctx, journal.Event{Kind: journal.KindConfigurationError, Detail: "a -> b -> a"})
	sink.Emit(ctx, journal.Event{Kind: journal.KindDispatched, HandlerID: "text", Route: "reused"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "no_handler", entries[0].Message)
	assert.Equal(t, "x/y", entries[0].ContextMap()["mime"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "a -> b -> a", entries[1].ContextMap()["detail"])
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, "reused", entries[2].ContextMap()["route"])
}

func TestLogSink_FilteredLevelIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := NewLogSink(zap.New(core))

	sink.Emit(context.Background(), journal.Event{Kind: journal.KindHandlerVetoed})
	assert.Zero(t, logs.Len())
}

type failingRecorder struct{ closed bool }

func (f *failingRecorder) Record(context.Context, *journal.Event) error {
	return errors.New("redis down")
}

func (f *failingRecorder) Close() error {
	f.closed = true
	return nil
}

func TestJournalSink(t *testing.T) {
	t.Run("records into redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := journal.NewClient(&redis.Options{Addr: mr.Addr()}, "diag")
		require.NoError(t, err)

		sink := NewJournalSink(client, nil)
		sink.Emit(context.Background(), journal.Event{Kind: journal.KindClassified, Locator: "/a", MIME: "text/plain"})

		events, err := client.ListEvents(context.Background(), 0, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "text/plain", events[0].MIME)
		assert.NoError(t, sink.Close())
	})

	t.Run("write failure is logged not raised", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		rec := &failingRecorder{}
		sink := NewJournalSink(rec, zap.New(core))

		sink.Emit(context.Background(), journal.Event{Kind: journal.KindClassified})
		assert.Equal(t, 1, logs.FilterMessage("failed to record journal event").Len())

		require.NoError(t, sink.Close())
		assert.True(t, rec.closed)
	})

	t.Run("cancelled context still records", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := journal.NewClient(&redis.Options{Addr: mr.Addr()}, "diag")
		require.NoError(t, err)
		defer client.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		NewJournalSink(client, nil).Emit(ctx, journal.Event{Kind: journal.KindNoHandler})

		events, err := client.ListEvents(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestFanoutAndMemory(t *testing.T) {
	a, b := &Memory{}, &Memory{}
	f := Fanout{a, Discard, b}

	f.Emit(context.Background(), journal.Event{Kind: journal.KindNoHandler})
	f.Emit(context.Background(), journal.Event{Kind: journal.KindDispatched})

	assert.Equal(t, []journal.Kind{journal.KindNoHandler, journal.KindDispatched}, a.Kinds())
	assert.Equal(t, a.Events(), b.Events())
	assert.NoError(t, f.Close())
}
