package service

import (
	"strings"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// FilterEvents returns the events matching criteria, in input order.
//
// An event matches when the category selector is "all" (or empty) or equals its
// category, and the lower-cased query occurs in its lower-cased title or
// description. The query is not trimmed; an empty query matches everything.
func FilterEvents(events []model.Event, criteria model.FilterCriteria) []model.Event {
	query := strings.ToLower(criteria.Query)
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !allCategories(criteria.Category) && criteria.Category != e.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Description), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func allCategories(c model.Category) bool {
	return c == "" || c == model.CategoryAll
}
