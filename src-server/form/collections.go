package form

import (
	"slices"
	"strings"

	"devevents/src-server/model"
)

const (
	AGENDA_FIELD_TIME  = "time"
	AGENDA_FIELD_TOPIC = "topic"
)

// AddTag appends the trimmed candidate unless it is empty or already present.
// It reports whether the tag was added, so the caller knows to clear its input.
func (s *Session) AddTag(candidate string) bool {
	tag := strings.TrimSpace(candidate)
	return s.update(func() bool {
		if tag == "" || slices.Contains(s.draft.Tags, tag) {
			return false
		}
		s.draft.Tags = append(s.draft.Tags, tag)
		return true
	})
}

// RemoveTag drops the tag at index; out of range is a no-op.
func (s *Session) RemoveTag(index int) {
	s.update(func() bool {
		if index < 0 || index >= len(s.draft.Tags) {
			return false
		}
		s.draft.Tags = slices.Delete(s.draft.Tags, index, index+1)
		return true
	})
}

// AddAgendaItem appends an empty entry.
func (s *Session) AddAgendaItem() {
	s.update(func() bool {
		s.draft.Agenda = append(s.draft.Agenda, model.AgendaItem{})
		return true
	})
}

// RemoveAgendaItem drops the entry at index, shifting the rest left; out of
// range is a no-op.
func (s *Session) RemoveAgendaItem(index int) {
	s.update(func() bool {
		if index < 0 || index >= len(s.draft.Agenda) {
			return false
		}
		s.draft.Agenda = slices.Delete(s.draft.Agenda, index, index+1)
		return true
	})
}

// UpdateAgendaItem replaces one field ("time" or "topic") of the entry at
// index. An index that no longer exists, e.g. because a removal raced the
// edit, is ignored.
func (s *Session) UpdateAgendaItem(index int, field, value string) {
	s.update(func() bool {
		if index < 0 || index >= len(s.draft.Agenda) {
			return false
		}
		switch field {
		case AGENDA_FIELD_TIME:
			s.draft.Agenda[index].Time = value
		case AGENDA_FIELD_TOPIC:
			s.draft.Agenda[index].Topic = value
		default:
			return false
		}
		return true
	})
}
