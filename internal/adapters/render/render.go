package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"notegraph/internal/domain"
)

// Status writes a human-readable mirror status report
func Status(w io.Writer, s *domain.StatusSummary) {
	fmt.Fprintf(w, "%s %s\n", Title.Render("Mirror"), HealthStyle(s.Health).Render(string(s.Health)))
	fmt.Fprintf(w, "  %s %s\n", Label.Render("source:  "), s.SourceCounts)
	if s.MirroredCounts != nil {
		fmt.Fprintf(w, "  %s %s\n", Label.Render("mirrored:"), *s.MirroredCounts)
	} else {
		fmt.Fprintf(w, "  %s %s\n", Label.Render("mirrored:"), MutedText.Render("none"))
	}
	fmt.Fprintf(w, "  %s %t\n", Label.Render("consistent:"), s.Consistent)
	state(w, s.State)
}

// Sync writes the summary of a completed sync
func Sync(w io.Writer, s *domain.SyncSummary) {
	fmt.Fprintf(w, "%s run %s\n", Success.Render("Synced"), s.ActiveRunID)
	fmt.Fprintf(w, "  %s %s\n", Label.Render("source:  "), s.SourceCounts)
	fmt.Fprintf(w, "  %s %s\n", Label.Render("mirrored:"), s.MirroredCounts)
}

// Index writes the statistics of a vault rebuild
func Index(w io.Writer, s *domain.IndexStats) {
	fmt.Fprintf(w, "%s %d files: %d notes, %d links %s\n",
		Success.Render("Indexed"), s.FilesScanned, s.NotesAdded, s.LinksAdded,
		MutedText.Render("("+s.Duration.Round(time.Millisecond).String()+")"))
}

// IndexRebuilt writes when the local index was last rebuilt from the vault
func IndexRebuilt(w io.Writer, at *time.Time) {
	if at == nil {
		fmt.Fprintf(w, "  %s %s\n", Label.Render("index rebuilt:"), WarningMsg.Render("never, run index first"))
		return
	}
	fmt.Fprintf(w, "  %s %s\n", Label.Render("index rebuilt:"), at.Format(time.RFC3339))
}

// Traverse writes the nodes grouped by hop followed by the edges
func Traverse(w io.Writer, r *domain.TraverseResult) {
	fmt.Fprintf(w, "%s %s\n", Title.Render("Run"), r.ActiveRunID)

	hop := -1
	for _, n := range r.Nodes {
		if n.Hop != hop {
			hop = n.Hop
			fmt.Fprintf(w, "%s\n", Label.Render(fmt.Sprintf("hop %d", hop)))
		}
		fmt.Fprintf(w, "  %s\n", n.Path)
	}

	if len(r.Edges) > 0 {
		fmt.Fprintf(w, "%s\n", Label.Render("edges"))
	}
	for _, e := range r.Edges {
		fmt.Fprintf(w, "  %s\n", Edge(e))
	}

	if r.Truncated {
		fmt.Fprintln(w, WarningMsg.Render("truncated: a budget was reached, raise --max-* to see more"))
	}
}

// Edge formats one edge as "from -rel-> to"
func Edge(e domain.TraverseEdge) string {
	to := MutedText.Render(e.Target + " (unresolved)")
	if e.ToPath != nil {
		to = *e.ToPath
	}
	arrow := Rel.Render("-" + e.Rel + "->")
	return strings.Join([]string{e.FromPath, arrow, to}, " ")
}

// Paths lists the reached note paths, one per line, for the clipboard
func Paths(r *domain.TraverseResult) string {
	var sb strings.Builder
	for _, n := range r.Nodes {
		sb.WriteString(n.Path)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func state(w io.Writer, st domain.MirrorState) {
	run := st.ActiveRunID
	if run == "" {
		run = MutedText.Render("none")
	}
	fmt.Fprintf(w, "  %s %s\n", Label.Render("active run:"), run)
	if st.LastSuccessAt != nil {
		fmt.Fprintf(w, "  %s %s\n", Label.Render("last success:"), st.LastSuccessAt.Format(time.RFC3339))
	}
	if st.LastError != "" {
		at := ""
		if st.LastErrorAt != nil {
			at = " " + MutedText.Render("at "+st.LastErrorAt.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "  %s %s%s\n", ErrorMsg.Render("last error:"), st.LastError, at)
	}
}
