package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAt(t *testing.T) {
	now := time.Date(2025, 10, 29, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		spec    string
		want    time.Time
		wantErr bool
	}{
		{spec: "1h", want: now.Add(-time.Hour)},
		{spec: "1h30m", want: now.Add(-90 * time.Minute)},
		{spec: "2025-10-29T13:00:00Z", want: time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC)},
		{spec: "2025-10-28", want: time.Date(2025, 10, 28, 0, 0, 0, 0, time.UTC)},
		{spec: "", wantErr: true},
		{spec: "-5m", wantErr: true},
		{spec: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseAt(tt.spec, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.UnixMilli(), got)
		})
	}
}

func TestParseRange(t *testing.T) {
	since, until, err := ParseRange("", "")
	require.NoError(t, err)
	assert.Zero(t, since)
	assert.Zero(t, until)

	since, until, err = ParseRange("2h", "1h")
	require.NoError(t, err)
	assert.Less(t, since, until)

	_, _, err = ParseRange("1h", "2h")
	assert.ErrorContains(t, err, "--since must be before --until")

	_, _, err = ParseRange("bogus", "")
	assert.ErrorContains(t, err, "invalid --since")
}
