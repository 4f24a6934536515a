package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vilaca/mr-monitor/internal/api"
	"github.com/vilaca/mr-monitor/internal/domain"
)

const (
	opListMergeRequests = "list merge requests"
	opFetchApprovals    = "fetch approvals"
)

// MergeRequestService lists a project's open merge requests and enriches them
// with the number of approvals they still need.
type MergeRequestService struct {
	gateway        api.Gateway
	projectID      int64
	maxConcurrency int
	logger         *zap.Logger
}

// NewMergeRequestService creates a new merge request service.
// maxConcurrency <= 0 issues one approvals request per matched merge request
// at once; a positive value caps the number of requests in flight.
func NewMergeRequestService(gateway api.Gateway, projectID int64, maxConcurrency int, logger *zap.Logger) *MergeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeRequestService{
		gateway:        gateway,
		projectID:      projectID,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// approval pairs a merge request iid with its remaining approvals.
type approval struct {
	IID           int64
	ApprovalsLeft int64
}

// FetchAndEnrich returns the open merge requests targeting branch for which
// pred holds, in list order, each with ApprovalsNeeded set. A nil pred keeps
// every merge request. Any failed request fails the whole call and no
// merge requests are returned.
func (s *MergeRequestService) FetchAndEnrich(ctx context.Context, branch string, pred func(domain.MergeRequest) bool) ([]domain.MergeRequest, error) {
	mrs, err := s.listMergeRequests(ctx, branch)
	if err != nil {
		return nil, err
	}

	if pred != nil {
		mrs = slices.DeleteFunc(mrs, func(mr domain.MergeRequest) bool { return !pred(mr) })
	}

	iids := make([]int64, len(mrs))
	for i, mr := range mrs {
		iids[i] = mr.IID
	}
	s.logger.Debug("matching merge requests", zap.String("branch", branch), zap.Int64s("iids", iids))

	approvals, err := s.fetchApprovals(ctx, iids)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched approvals", zap.Any("approvals", approvals))

	mergeApprovals(mrs, approvals, s.logger)

	return mrs, nil
}

// ClassifyAndPartition splits enriched merge requests into ready and blocked groups.
func ClassifyAndPartition(mrs []domain.MergeRequest) (ready, blocked []domain.MergeRequest) {
	return domain.Partition(mrs)
}

func (s *MergeRequestService) listMergeRequests(ctx context.Context, branch string) ([]domain.MergeRequest, error) {
	query := url.Values{}
	query.Set("state", "opened")
	query.Set("scope", "all")
	query.Set("target_branch", branch)

	path := fmt.Sprintf("/projects/%d/merge_requests", s.projectID)
	body, err := s.gateway.Get(ctx, path, query)
	if err != nil {
		return nil, &FetchError{Op: opListMergeRequests, Err: err}
	}

	var glMRs []gitlabMergeRequest
	if err := json.Unmarshal(body, &glMRs); err != nil {
		return nil, &FetchError{Op: opListMergeRequests, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}

	mrs, err := convertMergeRequests(glMRs)
	if err != nil {
		return nil, &FetchError{Op: opListMergeRequests, Err: err}
	}
	s.logger.Debug("listed merge requests", zap.Int("count", len(mrs)), zap.Int("bytes", len(body)))

	return mrs, nil
}

// fetchApprovals requests approvals for every iid concurrently. Each
// goroutine writes only its own slot; the first failure cancels the rest.
func (s *MergeRequestService) fetchApprovals(ctx context.Context, iids []int64) ([]approval, error) {
	results := make([]approval, len(iids))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}

	for i, iid := range iids {
		g.Go(func() error {
			left, err := s.fetchApprovalsLeft(gctx, iid)
			if err != nil {
				return err
			}
			results[i] = approval{IID: iid, ApprovalsLeft: left}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *MergeRequestService) fetchApprovalsLeft(ctx context.Context, iid int64) (int64, error) {
	u := fmt.Sprintf("%s/projects/%d/merge_requests/%d/approvals", s.gateway.BaseURL(), s.projectID, iid)

	body, err := s.gateway.GetURL(ctx, u)
	if err != nil {
		return 0, &FetchError{Op: opFetchApprovals, IID: iid, Err: err}
	}

	left, err := parseApprovalsLeft(body)
	if err != nil {
		return 0, &FetchError{Op: opFetchApprovals, IID: iid, Err: err}
	}

	return left, nil
}

// parseApprovalsLeft extracts the integer approvals_left field from an
// approvals response.
func parseApprovalsLeft(body []byte) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: trailing data after JSON value", ErrDecode)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return 0, ErrMissingApprovalData
	}

	n, ok := obj["approvals_left"].(json.Number)
	if !ok {
		return 0, ErrMissingApprovalData
	}

	left, err := n.Int64()
	if err != nil {
		return 0, ErrMissingApprovalData
	}

	return left, nil
}

// mergeApprovals joins approvals onto mrs by iid. Approvals whose iid is not
// in mrs are ignored.
func mergeApprovals(mrs []domain.MergeRequest, approvals []approval, logger *zap.Logger) {
	byIID := make(map[int64]int64, len(approvals))
	for _, a := range approvals {
		byIID[a.IID] = a.ApprovalsLeft
	}

	for i := range mrs {
		left, ok := byIID[mrs[i].IID]
		if !ok {
			continue
		}
		logger.Debug("updating approvals needed",
			zap.Int64("iid", mrs[i].IID),
			zap.Int64("from", mrs[i].ApprovalsNeeded),
			zap.Int64("to", left),
		)
		mrs[i].ApprovalsNeeded = left
	}
}
