package watch

import (
	"fmt"
	"sort"
	"strings"
)

// Change describes an item whose outcome differs from the previous run.
type Change struct {
	// ID is the item identifier.
	ID string
	// From is the previous outcome, empty for new items.
	From string
	// To is the current outcome, empty for removed items.
	To string
}

// Diff compares two outcome maps keyed by item ID and returns the changes
// sorted by ID.
func Diff(prev, curr map[string]string) []Change {
	var changes []Change

	for id, from := range prev {
		to, ok := curr[id]
		if !ok {
			changes = append(changes, Change{ID: id, From: from})
			continue
		}

		if from != to {
			changes = append(changes, Change{ID: id, From: from, To: to})
		}
	}

	for id, to := range curr {
		if _, ok := prev[id]; !ok {
			changes = append(changes, Change{ID: id, To: to})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })

	return changes
}

// DiffSummary returns a one-line summary such as "+2 new, -1 removed, 3 changed".
func DiffSummary(changes []Change) string {
	var added, removed, changed int

	for _, c := range changes {
		switch {
		case c.From == "":
			added++
		case c.To == "":
			removed++
		default:
			changed++
		}
	}

	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d new", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d removed", removed))
	}

	if changed > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", changed))
	}

	if len(parts) == 0 {
		return "no changes"
	}

	return strings.Join(parts, ", ")
}
