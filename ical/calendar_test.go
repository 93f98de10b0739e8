package ical

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFold(t *testing.T) {
	var lines []string
	w := fold(func(s string) { lines = append(lines, s) })

	w("SUMMARY:short")
	long := "DESCRIPTION:" + strings.Repeat("a", 200)
	w(long)

	if lines[0] != "SUMMARY:short\r\n" {
		t.Errorf("short line: got %q", lines[0])
	}
	var unfolded strings.Builder
	for i, line := range lines[1:] {
		if !strings.HasSuffix(line, "\r\n") {
			t.Errorf("line %d has no CRLF: %q", i, line)
		}
		if len(line)-2 > maxLineOctets {
			t.Errorf("line %d is %d octets", i, len(line)-2)
		}
		content := strings.TrimSuffix(line, "\r\n")
		if i > 0 {
			if !strings.HasPrefix(content, " ") {
				t.Errorf("continuation line %d doesn't start with a space", i)
			}
			content = content[1:]
		}
		unfolded.WriteString(content)
	}
	if unfolded.String() != long {
		t.Error("unfolding doesn't give back the original line")
	}
}

func TestFoldKeepsRunesWhole(t *testing.T) {
	var sb strings.Builder
	fold(func(s string) { sb.WriteString(s) })("SUMMARY:" + strings.Repeat("é", 60))
	for _, line := range strings.Split(strings.TrimSuffix(sb.String(), "\r\n"), "\r\n") {
		if !utf8.ValidString(line) {
			t.Errorf("line split inside a rune: %q", line)
		}
	}
}

func TestCalendarToIcal(t *testing.T) {
	cal := NewCalendar()
	cal.SetName("Dev events")

	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC).Unix()
	event := NewEvent("abc")
	event.
		SetSummary("Go meetup, spring").
		SetDescription("line one\nline two").
		SetLocation("Hall A").
		SetCategories([]string{"go", "meetup"}).
		SetStartDate(start)
	if err := cal.AddEvent(event); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := cal.ToIcal(func(s string) { sb.WriteString(s) }); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"X-WR-CALNAME:Dev events\r\n",
		"UID:abc\r\n",
		"DTSTART:20240501T180000Z\r\n",
		"DTEND:20240501T190000Z\r\n",
		"SUMMARY:Go meetup\\, spring\r\n",
		"DESCRIPTION:line one\\nline two\r\n",
		"CATEGORIES:go,meetup\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestAddEventValidates(t *testing.T) {
	cal := NewCalendar()
	testCases := map[string]struct {
		event Event
		want  error
	}{
		"no id":      {event: *newEventPtr("").SetSummary("x").SetStartDate(1), want: ErrIDNotSet},
		"no summary": {event: *newEventPtr("a").SetStartDate(1), want: ErrSummaryNotSet},
		"no start":   {event: *newEventPtr("a").SetSummary("x"), want: ErrStartDateInvalid},
		"bad url":    {event: *newEventPtr("a").SetSummary("x").SetStartDate(1).SetURL("not a url"), want: ErrInvalidURL},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if err := cal.AddEvent(tc.event); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
	if len(cal.GetEvents()) != 0 {
		t.Errorf("invalid events were added")
	}
}

func newEventPtr(id string) *Event {
	e := NewEvent(id)
	return &e
}
