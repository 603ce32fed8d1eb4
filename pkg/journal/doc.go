// Package journal provides the Redis-backed record of dispatch diagnostics for
// filedock.
//
// # Overview
//
// Every classification and routing decision made by the dispatch core is described
// by an Event: a resource was classified, attached to a task, left inert because no
// handler accepts it, or refused by the preferred task's veto policy. Recognizer
// ordering problems and unreadable resources are recorded the same way.
//
// The journal stores each event as a Redis hash, indexes it by time in a sorted
// set, and publishes it on a Pub/Sub channel so that `filedock watch` can follow a
// running workspace live.
//
// # Multi-Instance Support
//
// All Redis keys and Pub/Sub channels are namespaced by instance name, so several
// workspaces (for example one per user session) can share a Redis server.
//
// # Usage Example
//
//	client, err := journal.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.Record(ctx, &journal.Event{
//		ID:      uuid.New().String(),
//		Kind:    journal.KindNoHandler,
//		Locator: "/tmp/blob.bin",
//		MIME:    "application/x-unknown",
//	})
//
// # Key Patterns
//
//	filedock:{instance}:event:{id}   hash     one event
//	filedock:{instance}:events       zset     event ids scored by created_at_ms
//	filedock:{instance}:event_stream pub/sub  JSON-encoded events
package journal
