package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFC3339_RoundTrip(t *testing.T) {
	in := "2025-01-01T00:00:00Z"
	got := TimeFromRFC3339(in)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, in, TimeToRFC3339(got))
}

func TestRFC3339_Normalizes(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"offset":          {in: "2025-01-01T09:00:00+09:00", want: "2025-01-01T00:00:00Z"},
		"fraction":        {in: "2025-01-01T00:00:00.120Z", want: "2025-01-01T00:00:00.12Z"},
		"invalid is zero": {in: "yesterday", want: "0001-01-01T00:00:00Z"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeToRFC3339(TimeFromRFC3339(tc.in)))
		})
	}
}

func TestParseRFC3339_Error(t *testing.T) {
	_, err := ParseRFC3339("2025-13-01T00:00:00Z")
	require.Error(t, err)
}

func TestUnixMillis(t *testing.T) {
	ts := TimeFromUnixMillis(1735689600123)
	assert.Equal(t, "2025-01-01T00:00:00.123Z", TimeToRFC3339(ts))
	assert.Equal(t, int64(1735689600123), TimeToUnixMillis(ts))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, DurationFromWire("1m30s"))
	assert.Equal(t, "1m30s", DurationToWire(90*time.Second))
	assert.Zero(t, DurationFromWire("soon"))
}
