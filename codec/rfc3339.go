// Package codec provides conversion functions for common value types that
// have no JSON representation of their own. Each pair fits the from_wire and
// to_wire roles of a schema adapter, usually through a thin wrapper over a
// named type in the generated package:
//
//	type Timestamp time.Time
//
//	func TimestampFromWire(s string) Timestamp { return Timestamp(codec.TimeFromRFC3339(s)) }
//	func TimestampToWire(t Timestamp) string   { return codec.TimeToRFC3339(time.Time(t)) }
package codec

import "time"

// ParseRFC3339 parses s as an RFC 3339 timestamp. Fractional seconds are
// optional.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// TimeFromRFC3339 is ParseRFC3339 for adapters: invalid input yields the
// zero time.
func TimeFromRFC3339(s string) time.Time {
	t, err := ParseRFC3339(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TimeToRFC3339 formats t in UTC. Trailing zeros of the fraction are
// dropped.
func TimeToRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// TimeFromUnixMillis converts milliseconds since the Unix epoch.
func TimeFromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TimeToUnixMillis is the inverse of TimeFromUnixMillis.
func TimeToUnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}
