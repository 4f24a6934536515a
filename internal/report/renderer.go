package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vilaca/mr-monitor/internal/domain"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Report is the grouped result of one run.
type Report struct {
	TargetBranch string
	Ready        []domain.MergeRequest
	Blocked      []domain.MergeRequest
}

// Renderer writes a report to w.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Formats lists the supported format names.
var Formats = []string{"slack", "text", "yaml"}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch format {
	case "slack":
		return NewSlackRenderer(), nil
	case "text":
		return NewTextRenderer(), nil
	case "yaml":
		return NewYAMLRenderer(), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// SlackRenderer renders Slack-flavoured markdown suitable for pasting into a channel.
type SlackRenderer struct{}

// NewSlackRenderer creates a new Slack renderer.
func NewSlackRenderer() *SlackRenderer {
	return &SlackRenderer{}
}

func (r *SlackRenderer) Render(w io.Writer, rep Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*Open MRs against %s:*\n\n", rep.TargetBranch)

	if len(rep.Ready) > 0 {
		r.writeGroup(&b, "Ready to Merge", rep.Ready)
	}
	if len(rep.Blocked) > 0 {
		r.writeGroup(&b, "Blocked", rep.Blocked)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *SlackRenderer) writeGroup(b *strings.Builder, header string, mrs []domain.MergeRequest) {
	fmt.Fprintf(b, "* *%s*\n", header)

	for _, mr := range mrs {
		fmt.Fprintf(b, "    * [%s](%s) (%s)\n", mr.Title, mr.WebURL, mr.Author.Username)

		if len(mr.Labels) > 0 {
			fmt.Fprintf(b, "        * Labels: %s\n", strings.Join(mr.Labels, ", "))
		}

		if blockers := mr.Blockers(); len(blockers) > 0 {
			fmt.Fprintf(b, "        * %s\n", strings.Join(blockers, ", "))
		}
	}
}
