package domain

import (
	"fmt"
	"strings"
)

// Status is the translation workflow stage of an entry.
type Status string

const (
	// StatusToDo marks untouched entries.
	StatusToDo Status = "To Do"
	// StatusEditing marks entries being edited.
	StatusEditing Status = "Editing"
	// StatusProofreading marks entries under review.
	StatusProofreading Status = "Proofreading"
	// StatusProblematic marks entries flagged for discussion.
	StatusProblematic Status = "Problematic"
	// StatusDone marks finished entries.
	StatusDone Status = "Done"
)

// AllStatuses lists every status in workflow order.
func AllStatuses() []Status {
	return []Status{StatusToDo, StatusEditing, StatusProofreading, StatusProblematic, StatusDone}
}

// ParseStatus converts a document value into a Status.
// Matching ignores case and surrounding whitespace; empty means To Do.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusToDo, nil
	}
	for _, st := range AllStatuses() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// InsertionSet holds the statuses whose translated text is inserted.
// Done is always a member.
type InsertionSet struct {
	members map[Status]bool
}

// NewInsertionSet creates a set containing Done plus the opt-in stages.
func NewInsertionSet(optIn ...Status) InsertionSet {
	members := map[Status]bool{StatusDone: true}
	for _, st := range optIn {
		if st != "" {
			members[st] = true
		}
	}
	return InsertionSet{members: members}
}

// Contains reports whether entries in status st use their translation.
func (s InsertionSet) Contains(st Status) bool {
	if s.members == nil {
		return st == StatusDone
	}
	return s.members[st]
}

// Statuses returns the members in workflow order.
func (s InsertionSet) Statuses() []Status {
	var out []Status
	for _, st := range AllStatuses() {
		if s.Contains(st) {
			out = append(out, st)
		}
	}
	return out
}

// Select returns the text to serialise for an entry with the given fields.
func (s InsertionSet) Select(st Status, source, translated string) string {
	if s.Contains(st) {
		return translated
	}
	return source
}
