package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vilaca/mr-monitor/internal/domain"
)

// TextRenderer renders plain text blocks with aligned field names.
type TextRenderer struct{}

// NewTextRenderer creates a new text renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(w io.Writer, rep Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Open merge requests against %s\n", rep.TargetBranch)

	groups := []struct {
		name string
		mrs  []domain.MergeRequest
	}{
		{"Ready to merge", rep.Ready},
		{"Blocked", rep.Blocked},
	}
	for _, g := range groups {
		if len(g.mrs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n== %s (%d) ==\n", g.name, len(g.mrs))
		for _, mr := range g.mrs {
			b.WriteString("\n")
			b.WriteString(formatMergeRequest(mr))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type field struct {
	key   string
	value string
}

// formatMergeRequest renders one merge request as "Key: value" lines with the
// values aligned one column past the longest key.
func formatMergeRequest(mr domain.MergeRequest) string {
	fields := []field{
		{"Title:", mr.Title},
		{"Author:", mr.Author.Name},
		{"Branch:", mr.SourceBranch},
		{"URL:", mr.WebURL},
	}

	if len(mr.Labels) > 0 {
		fields = append(fields, field{"Labels:", strings.Join(mr.Labels, ", ")})
	}

	if blockers := mr.Blockers(); len(blockers) > 0 {
		fields = append(fields, field{"Blockers:", strings.Join(blockers, ", ")})
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.key))
	}
	width++

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%-*s%s\n", width, f.key, f.value)
	}
	return b.String()
}
