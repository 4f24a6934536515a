package domain

import "fmt"

// MergeStatus is GitLab's mergeability check result for a merge request.
type MergeStatus string

const (
	MergeStatusUnchecked             MergeStatus = "unchecked"
	MergeStatusChecking              MergeStatus = "checking"
	MergeStatusCanBeMerged           MergeStatus = "can_be_merged"
	MergeStatusCannotBeMerged        MergeStatus = "cannot_be_merged"
	MergeStatusCannotBeMergedRecheck MergeStatus = "cannot_be_merged_recheck"
)

// IsUnmergeable returns true for both "cannot be merged" variants.
func (s MergeStatus) IsUnmergeable() bool {
	return s == MergeStatusCannotBeMerged || s == MergeStatusCannotBeMergedRecheck
}

// UnmarshalText rejects values GitLab is not documented to send.
func (s *MergeStatus) UnmarshalText(text []byte) error {
	switch v := MergeStatus(text); v {
	case MergeStatusUnchecked, MergeStatusChecking, MergeStatusCanBeMerged,
		MergeStatusCannotBeMerged, MergeStatusCannotBeMergedRecheck:
		*s = v
		return nil
	default:
		return fmt.Errorf("unknown merge status %q", string(text))
	}
}

// State is the lifecycle state of a merge request.
type State string

const (
	StateOpened State = "opened"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// UnmarshalText rejects unknown states.
func (s *State) UnmarshalText(text []byte) error {
	switch v := State(text); v {
	case StateOpened, StateClosed, StateMerged:
		*s = v
		return nil
	default:
		return fmt.Errorf("unknown merge request state %q", string(text))
	}
}
