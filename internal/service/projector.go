package service

import (
	"math"
	"sort"
	"strings"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
)

// Filter narrows a record list. Empty fields mean "no constraint"; the three
// predicates compose with logical AND.
type Filter struct {
	Search   string
	Category model.Category
	Status   model.Status
}

// ApplyFilter returns the records matching every set predicate. Search is a
// case-insensitive substring match over title, description and submitter.
func ApplyFilter(records []model.Grievance, filter Filter) []model.Grievance {
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]model.Grievance, 0, len(records))
	for _, g := range records {
		if term != "" {
			if !strings.Contains(strings.ToLower(g.Title), term) &&
				!strings.Contains(strings.ToLower(g.Description), term) &&
				!strings.Contains(strings.ToLower(g.SubmitterEmail), term) {
				continue
			}
		}
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		matched = append(matched, g)
	}
	return matched
}

// SortByNewest orders records by created_at descending, in place. Records
// without a server-acknowledged timestamp sort last (zero time). Store
// delivery order is not trustworthy, so this is the only ordering shown to
// the user.
func SortByNewest(records []model.Grievance) []model.Grievance {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// StudentStats summarizes a student's own records.
type StudentStats struct {
	Total             int `json:"total"`
	Resolved          int `json:"resolved"`
	Open              int `json:"open"`
	AvgResolutionDays int `json:"avg_resolution_days"`
}

// ComputeStudentStats recomputes the student summary from scratch. Average
// resolution time is ceil(updated-created) in whole days per resolved record,
// then the mean rounded to the nearest integer; 0 when nothing is resolved.
func ComputeStudentStats(records []model.Grievance) StudentStats {
	stats := StudentStats{Total: len(records)}

	totalDays := 0.0
	resolvedWithTimes := 0
	for _, g := range records {
		switch g.Status {
		case model.StatusResolved:
			stats.Resolved++
			if !g.CreatedAt.IsZero() && !g.UpdatedAt.IsZero() {
				diff := g.UpdatedAt.Sub(g.CreatedAt)
				if diff < 0 {
					diff = -diff
				}
				totalDays += math.Ceil(diff.Hours() / 24)
				resolvedWithTimes++
			}
		case model.StatusPending, model.StatusInProgress:
			stats.Open++
		}
	}

	if resolvedWithTimes > 0 {
		stats.AvgResolutionDays = int(math.Round(totalDays / float64(resolvedWithTimes)))
	}

	return stats
}

// CategoryCount is one entry of the top-categories breakdown.
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// AdminStats summarizes the full record set.
type AdminStats struct {
	Total          int               `json:"total"`
	Pending        int               `json:"pending"`
	InProgress     int               `json:"in_progress"`
	Resolved       int               `json:"resolved"`
	Escalated      int               `json:"escalated"`
	ResolutionRate int               `json:"resolution_rate"`
	TopCategories  []CategoryCount   `json:"top_categories"`
	Recent         []model.Grievance `json:"recent"`
}

// ComputeAdminStats recomputes the admin summary from scratch on every call;
// there are no incremental counters to drift from the source set.
func ComputeAdminStats(records []model.Grievance) AdminStats {
	stats := AdminStats{Total: len(records)}

	counts := make(map[model.Category]int)
	var firstSeen []model.Category
	for _, g := range records {
		switch g.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusResolved:
			stats.Resolved++
		case model.StatusEscalated:
			stats.Escalated++
		}

		if _, seen := counts[g.Category]; !seen {
			firstSeen = append(firstSeen, g.Category)
		}
		counts[g.Category]++
	}

	if stats.Total > 0 {
		stats.ResolutionRate = int(math.Round(float64(stats.Resolved) / float64(stats.Total) * 100))
	}

	// Descending by count; ties keep first-seen order.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	for i, category := range firstSeen {
		if i == 5 {
			break
		}
		stats.TopCategories = append(stats.TopCategories, CategoryCount{
			Category: category,
			Count:    counts[category],
		})
	}

	recent := SortByNewest(append([]model.Grievance(nil), records...))
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.Recent = recent

	return stats
}
