//go:build stdjson

package benchmarks_test

import wirejson "github.com/reoring/wirejson"

func init() {
	wirejson.SetJSONDriver(wirejson.StdJSONDriver())
}
