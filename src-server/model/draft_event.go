package model

import (
	"fmt"
	"slices"
)

type EventMode string

const (
	EVENT_MODE_OFFLINE = EventMode("offline")
	EVENT_MODE_ONLINE  = EventMode("online")
	EVENT_MODE_HYBRID  = EventMode("hybrid")
)

// All modes in the order the form offers them.
var EventModes = []EventMode{EVENT_MODE_OFFLINE, EVENT_MODE_ONLINE, EVENT_MODE_HYBRID}

func (m EventMode) Valid() bool {
	return slices.Contains(EventModes, m)
}

type AgendaItem struct {
	Time  string `json:"time"`
	Topic string `json:"topic"`
}

// Flatten turns the item into the "<time> - <topic>" string the events
// endpoint expects. A topic containing " - " can't be split back reliably.
func (a AgendaItem) Flatten() string {
	return fmt.Sprintf("%s - %s", a.Time, a.Topic)
}

// A file picked by the user, held until the draft is submitted or reset.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *ImageFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// DraftEvent is the in-progress event record of one form session.
type DraftEvent struct {
	Title       string
	Description string
	Organizer   string
	Audience    string
	Mode        EventMode
	Time        string
	Venue       string
	Overview    string
	Location    string
	Date        string

	Tags   []string
	Agenda []AgendaItem

	Image        *ImageFile
	ImagePreview string
}

func NewDraftEvent() DraftEvent {
	return DraftEvent{
		Mode:   EVENT_MODE_OFFLINE,
		Tags:   []string{},
		Agenda: []AgendaItem{},
	}
}

// Clone returns a copy that shares no slices with d. The image bytes are
// shared since nothing mutates them after selection.
func (d DraftEvent) Clone() DraftEvent {
	clone := d
	clone.Tags = append([]string{}, d.Tags...)
	clone.Agenda = append([]AgendaItem{}, d.Agenda...)
	if d.Image != nil {
		image := *d.Image
		clone.Image = &image
	}
	return clone
}

// FlattenAgenda applies AgendaItem.Flatten to every entry, keeping order.
func (d DraftEvent) FlattenAgenda() []string {
	flattened := make([]string, len(d.Agenda))
	for i, item := range d.Agenda {
		flattened[i] = item.Flatten()
	}
	return flattened
}

// Scalar fields by their wire name, in the order they're sent.
func (d DraftEvent) Fields() [][2]string {
	return [][2]string{
		{"title", d.Title},
		{"description", d.Description},
		{"organizer", d.Organizer},
		{"audience", d.Audience},
		{"mode", string(d.Mode)},
		{"time", d.Time},
		{"venue", d.Venue},
		{"overview", d.Overview},
		{"location", d.Location},
		{"date", d.Date},
	}
}
