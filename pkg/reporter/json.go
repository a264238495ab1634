package reporter

import (
	"encoding/json"
	"io"

	"github.com/commit-tagger/pkg/tagger"
)

type JSONReporter struct {
	w io.Writer
}

func (r *JSONReporter) Report(res tagger.Result) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
