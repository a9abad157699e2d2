package atlas

import gojson "github.com/goccy/go-json"

// jsonMarshal centralizes the encoder every output document and
// custom MarshalJSON method uses: goccy/go-json as a drop-in, faster
// encoder in place of encoding/json.
func jsonMarshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// jsonMarshalIndent is used for the top-level file writers, matching
// the pretty-printed style the teacher's generators favor for
// human-diffable fixtures.
func jsonMarshalIndent(v any) ([]byte, error) {
	return gojson.MarshalIndent(v, "", "  ")
}
