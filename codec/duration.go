package codec

import "time"

// DurationFromWire parses s with time.ParseDuration. Invalid input yields 0.
func DurationFromWire(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// DurationToWire formats d like time.Duration.String.
func DurationToWire(d time.Duration) string {
	return d.String()
}
