package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vilaca/mr-monitor/internal/domain"
)

// YAMLRenderer renders the report as a YAML document for scripts.
type YAMLRenderer struct{}

// NewYAMLRenderer creates a new YAML renderer.
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

type yamlReport struct {
	TargetBranch string      `yaml:"target_branch"`
	Ready        []yamlEntry `yaml:"ready"`
	Blocked      []yamlEntry `yaml:"blocked"`
}

type yamlEntry struct {
	domain.MergeRequest `yaml:",inline"`
	Blockers            []string `yaml:"blockers,omitempty"`
}

func (r *YAMLRenderer) Render(w io.Writer, rep Report) error {
	doc := yamlReport{
		TargetBranch: rep.TargetBranch,
		Ready:        toEntries(rep.Ready),
		Blocked:      toEntries(rep.Blocked),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func toEntries(mrs []domain.MergeRequest) []yamlEntry {
	entries := make([]yamlEntry, len(mrs))
	for i, mr := range mrs {
		entries[i] = yamlEntry{MergeRequest: mr, Blockers: mr.Blockers()}
	}
	return entries
}
