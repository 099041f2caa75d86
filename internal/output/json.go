package output

import (
	"encoding/json"
	"time"

	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

// JSONFormatter renders payloads as indented JSON in the service's wire shape.
type JSONFormatter struct{}

func (f *JSONFormatter) Result(r scan.Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (f *JSONFormatter) Bulk(b scan.BulkResponse) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

func (f *JSONFormatter) History(entries []scan.Result, _ time.Time) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

func (f *JSONFormatter) Stats(s store.Stats) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
