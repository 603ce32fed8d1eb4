// Package testutil holds helpers shared by package tests: an in-memory journal
// and fixture files.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/filedock/pkg/journal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// PNGHeader is the start of a PNG file: signature plus the IHDR chunk header.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

// NewJournal starts a miniredis server and returns a journal client for
// instanceName on it. Both are closed when the test ends.
func NewJournal(t *testing.T, instanceName string) (*journal.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := journal.NewClient(&redis.Options{Addr: mr.Addr()}, instanceName)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// RecordEvent records e and returns it with its ID and timestamp filled in.
func RecordEvent(t *testing.T, c *journal.Client, e journal.Event) *journal.Event {
	t.Helper()
	require.NoError(t, c.Record(context.Background(), &e))
	return &e
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}
