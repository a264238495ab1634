package reporter

import (
	"io"

	"github.com/commit-tagger/pkg/tagger"
)

type Reporter interface {
	Report(res tagger.Result) error
}

func New(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}
