package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client provides instance-scoped Redis operations for the event journal.
// All keys and channels are namespaced with the instance name.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a journal client for the specified instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the namespace this client writes to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Record stores an event and publishes it to live subscribers.
// A missing ID or timestamp is filled in before validation.
//
// The hash write, index update and publish run in one MULTI/EXEC transaction so a
// subscriber never sees an event that GetEvent cannot return.
func (c *Client) Record(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAtMs == 0 {
		e.CreatedAtMs = time.Now().UnixMilli()
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, EventKey(c.instanceName, e.ID), EventToHash(e))
		pipe.ZAdd(ctx, EventIndexKey(c.instanceName), redis.Z{
			Score:  float64(e.CreatedAtMs),
			Member: e.ID,
		})
		pipe.Publish(ctx, EventStreamChannel(c.instanceName), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
// Returns (nil, redis.Nil) if the event doesn't exist; use IsNotFound to check.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	hashData, err := c.rdb.HGetAll(ctx, EventKey(c.instanceName, eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event from Redis: %w", err)
	}
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	e, err := HashToEvent(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize event: %w", err)
	}
	return e, nil
}

// ListEvents returns events whose timestamp lies within [sinceMs, untilMs], oldest
// first. A zero bound means unbounded on that side. Index entries whose hash has
// disappeared are skipped.
func (c *Client) ListEvents(ctx context.Context, sinceMs, untilMs int64) ([]*Event, error) {
	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if sinceMs > 0 {
		rng.Min = strconv.FormatInt(sinceMs, 10)
	}
	if untilMs > 0 {
		rng.Max = strconv.FormatInt(untilMs, 10)
	}

	ids, err := c.rdb.ZRangeByScore(ctx, EventIndexKey(c.instanceName), rng).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event index: %w", err)
	}

	events := make([]*Event, 0, len(ids))
	for _, id := range ids {
		e, err := c.GetEvent(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// ScanEventIDs returns the IDs of all events whose ID starts with prefix, sorted.
// Uses SCAN so large journals don't block the server.
func (c *Client) ScanEventIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := EventKeyPrefix(c.instanceName)
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan events: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// Subscription represents an active Pub/Sub subscription to journal events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of events. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors (malformed messages).
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times. Implements io.Closer.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe follows the live event stream of this instance.
// Delivery is at-most-once: events published while the subscriber is slow may be
// dropped by Redis.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, EventStreamChannel(c.instanceName))

	// Wait for the subscription confirmation so events recorded right after
	// Subscribe returns are not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to event stream: %w", err)
	}

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &e:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
