package persistence

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

var allowedSortFields = []string{"created_at", "updated_at", "name"}

// NormalizeListOptions applies the default page size, sort field and sort
// order, then validates the sort field against the allowlist.
func NormalizeListOptions(opts *ListOptions) error {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	if !slices.Contains(allowedSortFields, opts.SortBy) {
		return fmt.Errorf("%w: %s", ErrInvalidSortField, opts.SortBy)
	}

	return nil
}

// ApplyListOptions filters, sorts and paginates workflows in memory. Providers
// without a query engine (file, redis) share this pipeline so listings behave
// the same regardless of the backing store.
func ApplyListOptions(workflows []*models.Workflow, opts ListOptions) (*ListResult, error) {
	if err := NormalizeListOptions(&opts); err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if opts.Status != nil && workflow.Status != *opts.Status {
			continue
		}

		if opts.Tag != "" && !slices.Contains(workflow.Tags, opts.Tag) {
			continue
		}

		if opts.Query != "" && !strings.Contains(strings.ToLower(workflow.Name), strings.ToLower(opts.Query)) {
			continue
		}

		filtered = append(filtered, workflow)
	}

	sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	startIdx := opts.Offset
	if startIdx >= len(filtered) {
		return &ListResult{
			Workflows:   make([]*models.Workflow, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	endIdx := opts.Offset + opts.Limit
	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &ListResult{
		Workflows:   filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// sortWorkflows sorts workflows in-place based on the specified field and order.
func sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.Slice(workflows, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "updated_at":
			less = workflows[i].UpdatedAt.Before(workflows[j].UpdatedAt)
		case "name":
			less = workflows[i].Name < workflows[j].Name
		default:
			less = workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}
