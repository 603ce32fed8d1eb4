// Package watch follows activity as it happens: journal events streamed from
// Redis, and files dropped into a watched directory.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/filedock/pkg/journal"
)

// OutputFormat specifies how streamed events are written.
type OutputFormat string

const (
	// OutputFormatDefault is human-readable, one line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON is line-delimited JSON
	OutputFormatJSON OutputFormat = "json"
)

// EventStream is a live feed of journal events. *journal.Subscription
// satisfies it.
type EventStream interface {
	Events() <-chan *journal.Event
	Errors() <-chan error
}

// StreamEvents writes events from stream until ctx is done or the stream
// ends. Malformed messages are reported inline and skipped.
func StreamEvents(ctx context.Context, stream EventStream, format OutputFormat, w io.Writer) error {
	enc := json.NewEncoder(w)
	errs := stream.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-stream.Events():
			if !ok {
				return nil
			}
			if format == OutputFormatJSON {
				if err := enc.Encode(e); err != nil {
					return fmt.Errorf("failed to write event: %w", err)
				}
				continue
			}
			fmt.Fprintf(w, "[%s] %s\n", time.UnixMilli(e.CreatedAtMs).Format("15:04:05"), FormatEvent(e))

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(w, "⚠️  %v\n", err)
		}
	}
}

// FormatEvent renders one event as a single human-readable line.
func FormatEvent(e *journal.Event) string {
	switch e.Kind {
	case journal.KindClassified:
		if e.MIME == "" {
			return fmt.Sprintf("🔍 Classified: %s as unclassified", e.Locator)
		}
		return fmt.Sprintf("🔍 Classified: %s as %s", e.Locator, e.MIME)
	case journal.KindDispatched:
		return fmt.Sprintf("📂 Opened: %s in %s (%s)", e.Locator, e.HandlerID, e.Route)
	case journal.KindNoHandler:
		return fmt.Sprintf("💤 No handler: %s (%s)", e.Locator, displayMIME(e.MIME))
	case journal.KindHandlerVetoed:
		return fmt.Sprintf("✋ Vetoed: %s for %s, %s", e.Locator, e.HandlerID, e.Detail)
	case journal.KindConfigurationError:
		return fmt.Sprintf("⚙️  Configuration error: %s", e.Detail)
	case journal.KindResourceAccessError:
		return fmt.Sprintf("❌ Unreadable: %s", e.Detail)
	default:
		return fmt.Sprintf("❓ %s: %s", e.Kind, e.Locator)
	}
}

func displayMIME(mime string) string {
	if mime == "" {
		return "unclassified"
	}
	return mime
}
