package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

var ErrDuplicateTitle = errors.New("an event with this title already exists")

// Unique index over lower(trim(title)), created by CreateSchema.
const EVENT_TITLE_UNIQUE_INDEX = "events_title_unique_idx"

// Event is an event accepted by the events endpoint.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`              // required
	Title       string    `bun:"title,notnull" json:"title"`   // required
	Mode        EventMode `bun:"mode,notnull" json:"mode"`     // required
	Description string    `bun:"description" json:"description"`
	Organizer   string    `bun:"organizer" json:"organizer"`
	Audience    string    `bun:"audience" json:"audience"`
	Time        string    `bun:"time" json:"time"`
	Venue       string    `bun:"venue" json:"venue"`
	Overview    string    `bun:"overview" json:"overview"`
	Location    string    `bun:"location" json:"location"`
	Date        string    `bun:"date" json:"date"`

	Tags   []string `bun:"tags,type:json" json:"tags"`
	Agenda []string `bun:"agenda,type:json" json:"agenda"` // "<time> - <topic>"

	ImagePath string `bun:"image_path,notnull" json:"imagePath"` // required

	// 0 when Date/Time couldn't be understood
	StartsAtUnixUTC int64 `bun:"starts_at" json:"startsAtUnixUTC"`
	CreatedAt       int64 `bun:"created_at,notnull" json:"createdAt"`
	Announced       bool  `bun:"announced" json:"-"`
}

// Insert validates and stores a new event. Titles are unique, compared
// case-insensitively after trimming; the unique index enforces it so
// concurrent inserts can't both win.
func (e *Event) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Insert: event id is blank")
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("(*Event).Insert: title is blank")
	case !e.Mode.Valid():
		return fmt.Errorf("(*Event).Insert: invalid mode %q", e.Mode)
	case e.ImagePath == "":
		return fmt.Errorf("(*Event).Insert: image path is blank")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Agenda == nil {
		e.Agenda = []string{}
	}

	if _, err := db.NewInsert().
		Model(e).
		Exec(ctx); err != nil {
		// sqlite names the expression index in the constraint error
		if strings.Contains(err.Error(), EVENT_TITLE_UNIQUE_INDEX) {
			return fmt.Errorf("(*Event).Insert: %w", ErrDuplicateTitle)
		}
		return fmt.Errorf("(*Event).Insert: %w", err)
	}
	return nil
}

func (e *Event) ToDiscordEmbed(modeLabel string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Mode",
				Value:  modeLabel,
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: e.ID,
		},
	}
	if e.Organizer != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name: e.Organizer,
		}
	}
	if e.StartsAtUnixUTC != 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Starts",
			Value:  fmt.Sprintf("<t:%d:f>", e.StartsAtUnixUTC),
			Inline: true,
		})
	} else if e.Date != "" || e.Time != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "When",
			Value:  strings.TrimSpace(e.Date + " " + e.Time),
			Inline: true,
		})
	}
	if place := strings.Trim(strings.Join([]string{e.Venue, e.Location}, ", "), ", "); place != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Where",
			Value: place,
		})
	}
	if e.Audience != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Audience",
			Value: e.Audience,
		})
	}
	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, tag := range e.Tags {
			tags[i] = "#" + tag
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Tags",
			Value: strings.Join(tags, " "),
		})
	}
	if len(e.Agenda) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Agenda",
			Value: strings.Join(e.Agenda, "\n"),
		})
	}
	return embed
}
