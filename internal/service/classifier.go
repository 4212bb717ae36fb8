package service

import (
	"strings"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
)

// categoryKeywords maps each category to the cues scanned for in a
// submission. Keys iterate in model.Categories order, which is the tie-break
// order: some keywords deliberately overlap (an "ac" complaint can read as
// Infrastructure or Hostel) and the first-declared category wins a tie.
var categoryKeywords = map[model.Category][]string{
	model.CategoryAcademic: {
		"exam", "grade", "marks", "syllabus", "lecture", "assignment",
		"attendance", "result", "course",
	},
	model.CategoryInfrastructure: {
		"ac", "fan", "light", "electricity", "water", "wifi", "internet",
		"projector", "bench", "classroom", "building", "leak",
	},
	model.CategoryHostel: {
		"hostel", "mess", "room", "warden", "food", "accommodation",
		"roommate", "laundry",
	},
	model.CategoryLibrary: {
		"library", "book", "journal", "reading", "borrow",
	},
	model.CategoryTransport: {
		"bus", "transport", "route", "driver", "commute",
	},
	model.CategoryAdministrative: {
		"fee", "admission", "scholarship", "certificate", "document",
		"office", "refund", "id card",
	},
}

// SuggestCategory scores the submission text against each category's keyword
// set and returns the strict winner. Ties keep the first-declared category;
// zero hits return ok=false rather than a guess. The suggestion is advisory:
// the submitter may override it.
func SuggestCategory(title, description string) (model.Category, bool) {
	text := strings.ToLower(title + " " + description)

	var best model.Category
	bestCount := 0
	for _, category := range model.Categories {
		count := 0
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(text, keyword) {
				count++
			}
		}
		if count > bestCount {
			best = category
			bestCount = count
		}
	}

	if bestCount == 0 {
		return "", false
	}
	return best, true
}
