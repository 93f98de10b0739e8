package route

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"devevents/ical"
	"devevents/src-server/model"
	"devevents/src-server/utils"
)

// Ical serves every event with a known start time as a subscribable feed.
func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /api/events.ics", func(w http.ResponseWriter, r *http.Request) {
		eventModels := make([]model.Event, 0)
		if err := as.BunDB.NewSelect().
			Model(&eventModels).
			Where("starts_at > 0").
			Order("starts_at ASC").
			Scan(r.Context()); err != nil {
			slog.Error("can't list events", "error", err)
			http.Error(w, "Can't get events", http.StatusInternalServerError)
			return
		}

		icalCalendar := ical.NewCalendar()
		icalCalendar.
			SetName("Dev events").
			SetDescription("Events created through the event form")
		for _, eventModel := range eventModels {
			icalEvent := ical.NewEvent(eventModel.ID)
			icalEvent.
				SetSummary(eventModel.Title).
				SetDescription(eventDescription(eventModel)).
				SetLocation(strings.Trim(strings.Join([]string{eventModel.Venue, eventModel.Location}, ", "), ", ")).
				SetOrganizer(eventModel.Organizer).
				SetCategories(eventModel.Tags).
				SetStartDate(eventModel.StartsAtUnixUTC).
				SetStamp(eventModel.CreatedAt)
			if err := icalCalendar.AddEvent(icalEvent); err != nil {
				slog.Warn("skipping event in ical feed", "id", eventModel.ID, "error", err)
			}
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		writer := func(s string) {
			if _, err := io.WriteString(w, s); err != nil {
				slog.Warn("can't write to response", "where", "route/ical.go", "err", err)
			}
		}
		if err := icalCalendar.ToIcal(writer); err != nil {
			slog.Error("can't serialize ical feed", "error", err)
		}
	})
}

// description, overview, audience and agenda, separated by blank lines
func eventDescription(e model.Event) string {
	var parts []string
	for _, part := range []string{e.Description, e.Overview} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if e.Audience != "" {
		parts = append(parts, "Audience: "+e.Audience)
	}
	if len(e.Agenda) > 0 {
		parts = append(parts, "Agenda:\n"+strings.Join(e.Agenda, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
