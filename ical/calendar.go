// Package ical serializes events into an iCalendar feed (RFC 5545).
//
// Only what a read-only subscription needs is supported: one VCALENDAR with
// plain VEVENTs. Times are written in UTC.
package ical

import (
	"fmt"

	"github.com/google/uuid"
)

type Calendar struct {
	id          string
	prodID      string
	name        string
	description string
	url         string
	events      []Event
}

func NewCalendar() Calendar {
	return Calendar{
		id:     uuid.NewString(),
		prodID: "-//devevents//events feed//EN",
	}
}

// #region Getters

func (c *Calendar) GetID() string {
	return c.id
}

func (c *Calendar) GetProdID() string {
	return c.prodID
}

func (c *Calendar) GetName() string {
	return c.name
}

func (c *Calendar) GetDescription() string {
	return c.description
}

func (c *Calendar) GetUrl() string {
	return c.url
}

func (c *Calendar) GetEvents() []Event {
	return c.events
}

// #endregion

// #region Setters

func (c *Calendar) SetName(name string) *Calendar {
	c.name = name
	return c
}

func (c *Calendar) SetDescription(description string) *Calendar {
	c.description = description
	return c
}

func (c *Calendar) SetUrl(url string) *Calendar {
	c.url = url
	return c
}

// #endregion

// Validate the event and add it to the calendar
func (c *Calendar) AddEvent(event Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("(*Calendar).AddEvent: %w", err)
	}
	c.events = append(c.events, event)
	return nil
}

// ToIcal writes the calendar through writer, one content line per call.
func (c *Calendar) ToIcal(writer func(string)) error {
	w := fold(writer)
	w("BEGIN:VCALENDAR")
	w("PRODID:" + c.prodID)
	w("VERSION:2.0")
	w("CALSCALE:GREGORIAN")
	w("METHOD:PUBLISH")
	if c.name != "" {
		w("X-WR-CALNAME:" + escapeText(c.name))
	}
	if c.description != "" {
		w("X-WR-CALDESC:" + escapeText(c.description))
	}
	if c.url != "" {
		w("URL:" + c.url)
	}
	for _, event := range c.events {
		if err := event.toIcal(w); err != nil {
			return fmt.Errorf("(*Calendar).ToIcal: event %s: %w", event.GetID(), err)
		}
	}
	w("END:VCALENDAR")
	return nil
}
