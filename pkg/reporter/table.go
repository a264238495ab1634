package reporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/commit-tagger/pkg/tagger"
)

type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) Report(res tagger.Result) error {
	w := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPO\tBRANCH\tCOMMIT\tTAG\tSTATUS")
	fmt.Fprintln(w, "----\t------\t------\t---\t------")

	commit := res.Commit
	if commit == "" {
		commit = "(unknown)"
	}
	tag := res.Tag
	if tag == "" {
		tag = "(none)"
	}

	fmt.Fprintf(w, "%s/%s\t%s\t%s\t%s\t%s\n",
		res.Owner,
		res.Repo,
		res.Branch,
		commit,
		tag,
		status(res),
	)
	return w.Flush()
}

func status(res tagger.Result) string {
	switch {
	case res.DryRun && res.Tag != "":
		return "dry-run"
	case res.Pushed:
		return "pushed to " + res.Remote
	case res.Tagged:
		return "tagged locally, push failed"
	default:
		return "failed"
	}
}
