package form

import "fmt"

// Names of the scalar draft fields, as used on the wire.
const (
	FIELD_TITLE       = "title"
	FIELD_DESCRIPTION = "description"
	FIELD_ORGANIZER   = "organizer"
	FIELD_AUDIENCE    = "audience"
	FIELD_MODE        = "mode"
	FIELD_TIME        = "time"
	FIELD_VENUE       = "venue"
	FIELD_OVERVIEW    = "overview"
	FIELD_LOCATION    = "location"
	FIELD_DATE        = "date"
)

// Field returns the value of a scalar field.
func (s *Session) Field(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ptr, err := s.fieldLocked(name)
	if err != nil {
		return "", err
	}
	return *ptr, nil
}

// SetField assigns any string, including the empty one, to a scalar field.
func (s *Session) SetField(name, value string) error {
	var err error
	s.update(func() bool {
		var ptr *string
		if ptr, err = s.fieldLocked(name); err != nil {
			return false
		}
		*ptr = value
		return true
	})
	return err
}

func (s *Session) fieldLocked(name string) (*string, error) {
	d := &s.draft
	switch name {
	case FIELD_TITLE:
		return &d.Title, nil
	case FIELD_DESCRIPTION:
		return &d.Description, nil
	case FIELD_ORGANIZER:
		return &d.Organizer, nil
	case FIELD_AUDIENCE:
		return &d.Audience, nil
	case FIELD_MODE:
		return (*string)(&d.Mode), nil
	case FIELD_TIME:
		return &d.Time, nil
	case FIELD_VENUE:
		return &d.Venue, nil
	case FIELD_OVERVIEW:
		return &d.Overview, nil
	case FIELD_LOCATION:
		return &d.Location, nil
	case FIELD_DATE:
		return &d.Date, nil
	}
	return nil, fmt.Errorf("(*Session).Field %q: %w", name, ErrUnknownField)
}
