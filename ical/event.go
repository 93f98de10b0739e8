package ical

import (
	"net/url"
	"strings"
	"time"
)

type Event struct {
	id          string
	summary     string
	description string
	location    string
	organizer   string
	url         string
	categories  []string
	startDate   int64
	endDate     int64
	stamp       int64
}

func NewEvent(id string) Event {
	return Event{
		id: id,
	}
}

// #region Getters

func (e *Event) GetID() string {
	return e.id
}

func (e *Event) GetSummary() string {
	return e.summary
}

func (e *Event) GetStartDate() int64 {
	return e.startDate
}

// #endregion

// #region Setters

func (e *Event) SetSummary(summary string) *Event {
	e.summary = summary
	return e
}

func (e *Event) SetDescription(description string) *Event {
	e.description = description
	return e
}

func (e *Event) SetLocation(location string) *Event {
	e.location = location
	return e
}

func (e *Event) SetOrganizer(organizer string) *Event {
	e.organizer = organizer
	return e
}

func (e *Event) SetURL(url string) *Event {
	e.url = url
	return e
}

func (e *Event) SetCategories(categories []string) *Event {
	e.categories = categories
	return e
}

// Unix timestamps in UTC; an event without an end lasts an hour.
func (e *Event) SetStartDate(unix int64) *Event {
	e.startDate = unix
	return e
}

func (e *Event) SetEndDate(unix int64) *Event {
	e.endDate = unix
	return e
}

func (e *Event) SetStamp(unix int64) *Event {
	e.stamp = unix
	return e
}

// #endregion

func (e *Event) Validate() error {
	switch {
	case e.id == "":
		return ErrIDNotSet
	case strings.TrimSpace(e.summary) == "":
		return ErrSummaryNotSet
	case e.startDate <= 0:
		return ErrStartDateInvalid
	}
	if e.url != "" {
		if _, err := url.ParseRequestURI(e.url); err != nil {
			return ErrInvalidURL
		}
	}
	return nil
}

func (e *Event) toIcal(w func(string)) error {
	if err := e.Validate(); err != nil {
		return err
	}
	endDate := e.endDate
	if endDate <= e.startDate {
		endDate = e.startDate + int64(time.Hour/time.Second)
	}
	stamp := e.stamp
	if stamp == 0 {
		stamp = e.startDate
	}

	w("BEGIN:VEVENT")
	w("UID:" + e.id)
	w("DTSTAMP:" + unixToDatetime(stamp))
	w("DTSTART:" + unixToDatetime(e.startDate))
	w("DTEND:" + unixToDatetime(endDate))
	w("SUMMARY:" + escapeText(e.summary))
	if e.description != "" {
		w("DESCRIPTION:" + escapeText(e.description))
	}
	if e.location != "" {
		w("LOCATION:" + escapeText(e.location))
	}
	if e.organizer != "" {
		w("ORGANIZER;CN=" + quoteParam(e.organizer) + ":mailto:noreply@invalid")
	}
	if e.url != "" {
		w("URL:" + e.url)
	}
	if len(e.categories) > 0 {
		escaped := make([]string, len(e.categories))
		for i, category := range e.categories {
			escaped[i] = escapeText(category)
		}
		w("CATEGORIES:" + strings.Join(escaped, ","))
	}
	w("END:VEVENT")
	return nil
}
