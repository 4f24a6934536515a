package domain

// Author represents the GitLab user who opened a merge request.
// Identity is the numeric ID; name and username are display data.
type Author struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
}

// AuthorFilter returns a predicate matching merge requests opened by one of ids.
func AuthorFilter(ids []int64) func(MergeRequest) bool {
	allowed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}

	return func(mr MergeRequest) bool {
		_, ok := allowed[mr.Author.ID]
		return ok
	}
}
