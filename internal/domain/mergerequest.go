package domain

import "fmt"

// MergeRequest represents an open GitLab merge request.
// It is decoded from the project merge request list; ApprovalsNeeded is not
// part of that payload and stays zero until the approvals lookup fills it in.
type MergeRequest struct {
	IID                         int64       `json:"iid" yaml:"iid"`
	Title                       string      `json:"title" yaml:"title"`
	Author                      Author      `json:"author" yaml:"author"`
	SourceBranch                string      `json:"source_branch" yaml:"source_branch"`
	WebURL                      string      `json:"web_url" yaml:"web_url"`
	Labels                      []string    `json:"labels" yaml:"labels"`
	State                       State       `json:"state" yaml:"state"`
	Draft                       bool        `json:"draft" yaml:"draft"`
	WorkInProgress              bool        `json:"work_in_progress" yaml:"work_in_progress"`
	BlockingDiscussionsResolved bool        `json:"blocking_discussions_resolved" yaml:"blocking_discussions_resolved"`
	HasConflicts                bool        `json:"has_conflicts" yaml:"has_conflicts"`
	MergeStatus                 MergeStatus `json:"merge_status" yaml:"merge_status"`
	ApprovalsNeeded             int64       `json:"-" yaml:"approvals_needed"`
}

// Blockers lists the reasons the merge request cannot be merged yet.
// The checks always run in the same order; an empty result means ready.
func (mr MergeRequest) Blockers() []string {
	var blockers []string

	if !mr.BlockingDiscussionsResolved {
		blockers = append(blockers, "unresolved threads")
	}

	if mr.HasConflicts {
		blockers = append(blockers, "has conflicts")
	}

	if mr.MergeStatus.IsUnmergeable() {
		blockers = append(blockers, "cannot be merged")
	}

	if mr.ApprovalsNeeded > 0 {
		blockers = append(blockers, fmt.Sprintf("requires approval (%d)", mr.ApprovalsNeeded))
	}

	return blockers
}

// IsReady returns true if nothing blocks the merge request.
func (mr MergeRequest) IsReady() bool {
	return len(mr.Blockers()) == 0
}

// Partition splits mrs into ready and blocked groups in a single stable pass.
func Partition(mrs []MergeRequest) (ready, blocked []MergeRequest) {
	for _, mr := range mrs {
		if mr.IsReady() {
			ready = append(ready, mr)
		} else {
			blocked = append(blocked, mr)
		}
	}
	return ready, blocked
}
