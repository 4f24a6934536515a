package service

import (
	"fmt"
	"strings"

	"github.com/vilaca/mr-monitor/internal/domain"
)

// GitLab API response types. Every field is a pointer so that an absent or
// null value can be told apart from a zero value.
type gitlabMergeRequest struct {
	IID                         *int64              `json:"iid"`
	Title                       *string             `json:"title"`
	Author                      *gitlabAuthor       `json:"author"`
	SourceBranch                *string             `json:"source_branch"`
	WebURL                      *string             `json:"web_url"`
	Labels                      *[]string           `json:"labels"`
	State                       *domain.State       `json:"state"`
	Draft                       *bool               `json:"draft"`
	WorkInProgress              *bool               `json:"work_in_progress"`
	BlockingDiscussionsResolved *bool               `json:"blocking_discussions_resolved"`
	HasConflicts                *bool               `json:"has_conflicts"`
	MergeStatus                 *domain.MergeStatus `json:"merge_status"`
}

type gitlabAuthor struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Username *string `json:"username"`
}

// missingFields names the required fields that are absent or null.
func (m gitlabMergeRequest) missingFields() []string {
	required := []struct {
		name    string
		present bool
	}{
		{"iid", m.IID != nil},
		{"title", m.Title != nil},
		{"author", m.Author != nil},
		{"source_branch", m.SourceBranch != nil},
		{"web_url", m.WebURL != nil},
		{"labels", m.Labels != nil},
		{"state", m.State != nil},
		{"draft", m.Draft != nil},
		{"work_in_progress", m.WorkInProgress != nil},
		{"blocking_discussions_resolved", m.BlockingDiscussionsResolved != nil},
		{"has_conflicts", m.HasConflicts != nil},
		{"merge_status", m.MergeStatus != nil},
	}
	if m.Author != nil {
		required = append(required, []struct {
			name    string
			present bool
		}{
			{"author.id", m.Author.ID != nil},
			{"author.name", m.Author.Name != nil},
			{"author.username", m.Author.Username != nil},
		}...)
	}

	var missing []string
	for _, f := range required {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// convertMergeRequests converts GitLab merge requests to domain models.
// ApprovalsNeeded is left at zero.
func convertMergeRequests(glMRs []gitlabMergeRequest) ([]domain.MergeRequest, error) {
	mrs := make([]domain.MergeRequest, len(glMRs))
	for i, glm := range glMRs {
		if missing := glm.missingFields(); len(missing) > 0 {
			return nil, fmt.Errorf("%w: merge request at index %d: missing %s",
				ErrDecode, i, strings.Join(missing, ", "))
		}

		mrs[i] = domain.MergeRequest{
			IID:   *glm.IID,
			Title: *glm.Title,
			Author: domain.Author{
				ID:       *glm.Author.ID,
				Name:     *glm.Author.Name,
				Username: *glm.Author.Username,
			},
			SourceBranch:                *glm.SourceBranch,
			WebURL:                      *glm.WebURL,
			Labels:                      *glm.Labels,
			State:                       *glm.State,
			Draft:                       *glm.Draft,
			WorkInProgress:              *glm.WorkInProgress,
			BlockingDiscussionsResolved: *glm.BlockingDiscussionsResolved,
			HasConflicts:                *glm.HasConflicts,
			MergeStatus:                 *glm.MergeStatus,
		}
	}
	return mrs, nil
}
