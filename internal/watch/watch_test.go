package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dyluth/filedock/internal/testutil"
	"github.com/dyluth/filedock/pkg/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	events chan *journal.Event
	errs   chan error
}

func (f *fakeStream) Events() <-chan *journal.Event { return f.events }
func (f *fakeStream) Errors() <-chan error          { return f.errs }

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event journal.Event
		want  string
	}{
		{"classified", journal.Event{Kind: journal.KindClassified, Locator: "/a.png", MIME: "image/png"}, "🔍 Classified: /a.png as image/png"},
		{"unclassified", journal.Event{Kind: journal.KindClassified, Locator: "/empty"}, "🔍 Classified: /empty as unclassified"},
		{"dispatched", journal.Event{Kind: journal.KindDispatched, Locator: "/a.png", HandlerID: "image", Route: "reused"}, "📂 Opened: /a.png in image (reused)"},
		{"no handler", journal.Event{Kind: journal.KindNoHandler, Locator: "/b"}, "💤 No handler: /b (unclassified)"},
		{"vetoed", journal.Event{Kind: journal.KindHandlerVetoed, Locator: "/a.txt", HandlerID: "text", Detail: "vetoed by image"}, "✋ Vetoed: /a.txt for text, vetoed by image"},
		{"config", journal.Event{Kind: journal.KindConfigurationError, Detail: "a -> b -> a"}, "⚙️  Configuration error: a -> b -> a"},
		{"unreadable", journal.Event{Kind: journal.KindResourceAccessError, Detail: "cannot read /x: denied"}, "❌ Unreadable: cannot read /x: denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEvent(&tt.event))
		})
	}
}

func TestStreamEvents(t *testing.T) {
	t.Run("default format until the stream closes", func(t *testing.T) {
		s := &fakeStream{events: make(chan *journal.Event), errs: make(chan error)}
		go func() {
			s.errs <- errors.New("failed to unmarshal event")
			s.events <- &journal.Event{Kind: journal.KindNoHandler, Locator: "/b", MIME: "x/y"}
			close(s.events)
		}()

		var buf bytes.Buffer
		require.NoError(t, StreamEvents(context.Background(), s, OutputFormatDefault, &buf))
		assert.Contains(t, buf.String(), "💤 No handler: /b (x/y)\n")
		assert.Contains(t, buf.String(), "⚠️  failed to unmarshal event\n")
	})

	t.Run("json", func(t *testing.T) {
		s := &fakeStream{events: make(chan *journal.Event, 1), errs: make(chan error)}
		s.events <- &journal.Event{ID: "e1", Kind: journal.KindClassified, Locator: "/a"}
		close(s.events)

		var buf bytes.Buffer
		require.NoError(t, StreamEvents(context.Background(), s, OutputFormatJSON, &buf))

		var got journal.Event
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "e1", got.ID)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		s := &fakeStream{events: make(chan *journal.Event), errs: make(chan error)}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, StreamEvents(ctx, s, OutputFormatDefault, &bytes.Buffer{}))
	})
}

func TestStreamEvents_FromJournal(t *testing.T) {
	client, _ := testutil.NewJournal(t, "watch")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Record(ctx, &journal.Event{Kind: journal.KindDispatched, Locator: "/a.txt", HandlerID: "text", Route: "new_window"}))

	select {
	case e := <-sub.Events():
		assert.Equal(t, "📂 Opened: /a.txt in text (new_window)", FormatEvent(e))
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestDropWatcher(t *testing.T) {
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		batches [][]string
	)
	dw, err := NewDropWatcher(dir, 50*time.Millisecond, func(_ context.Context, paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, dw.Start(ctx))

	testutil.WriteFile(t, dir, "b.txt", []byte("b"))
	testutil.WriteFile(t, dir, "a.png", testutil.PNGHeader)
	testutil.WriteFile(t, dir, ".hidden", []byte("h"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	collected := func() []string {
		mu.Lock()
		defer mu.Unlock()
		var all []string
		for _, b := range batches {
			all = append(all, b...)
		}
		return all
	}
	assert.Eventually(t, func() bool { return len(collected()) >= 2 }, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, dw.Stop())

	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.txt")}, collected())
}

func TestNewDropWatcher_RejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewDropWatcher(file, 0, func(context.Context, []string) {}, nil)
	assert.ErrorContains(t, err, "not a directory")

	_, err = NewDropWatcher(filepath.Join(t.TempDir(), "missing"), 0, func(context.Context, []string) {}, nil)
	assert.Error(t, err)
}
