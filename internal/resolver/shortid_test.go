package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dyluth/filedock/pkg/journal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	ids     []string
	scanErr error
}

func (f *fakeLookup) GetEvent(_ context.Context, id string) (*journal.Event, error) {
	for _, known := range f.ids {
		if known == id {
			return &journal.Event{ID: id, Kind: journal.KindClassified}, nil
		}
	}
	return nil, redis.Nil
}

func (f *fakeLookup) ScanEventIDs(_ context.Context, prefix string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []string
	for _, id := range f.ids {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestResolveEventID(t *testing.T) {
	lookup := &fakeLookup{ids: []string{
		"0f3a9c10-1111-4aaa-8bbb-000000000001",
		"0f3a9c22-2222-4aaa-8bbb-000000000002",
		"7d41e001-3333-4aaa-8bbb-000000000003",
	}}
	ctx := context.Background()

	t.Run("unique prefix", func(t *testing.T) {
		id, err := ResolveEventID(ctx, lookup, "7D41E0")
		require.NoError(t, err)
		assert.Equal(t, "7d41e001-3333-4aaa-8bbb-000000000003", id)
	})

	t.Run("full id", func(t *testing.T) {
		id, err := ResolveEventID(ctx, lookup, "0f3a9c10-1111-4aaa-8bbb-000000000001")
		require.NoError(t, err)
		assert.Equal(t, "0f3a9c10-1111-4aaa-8bbb-000000000001", id)
	})

	t.Run("unknown full id", func(t *testing.T) {
		_, err := ResolveEventID(ctx, lookup, "ffffffff-1111-4aaa-8bbb-000000000001")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ResolveEventID(ctx, lookup, "0f3a")
		assert.ErrorContains(t, err, "at least 6 characters")
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ResolveEventID(ctx, lookup, "abcdef")
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsAmbiguousError(err))
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := ResolveEventID(ctx, lookup, "0f3a9c")
		require.True(t, IsAmbiguousError(err))

		var amb *AmbiguousError
		require.ErrorAs(t, err, &amb)
		assert.Len(t, amb.Matches, 2)
		assert.Contains(t, FormatAmbiguousError(amb), "Use a longer prefix")
	})

	t.Run("scan failure", func(t *testing.T) {
		_, err := ResolveEventID(ctx, &fakeLookup{scanErr: errors.New("conn refused")}, "abcdef")
		assert.ErrorContains(t, err, "conn refused")
	})
}

func TestFormatAmbiguousError_Truncates(t *testing.T) {
	var matches []string
	for i := 0; i < 13; i++ {
		matches = append(matches, fmt.Sprintf("abcdef%02d", i))
	}
	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "abcdef", Matches: matches})
	assert.Contains(t, msg, "abcdef09")
	assert.NotContains(t, msg, "abcdef10")
	assert.Contains(t, msg, "...and 3 more")
}
