package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devevents/src-server/model"
	"devevents/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/uptrace/bun"
)

// Discord refuses messages with more embeds than this.
const maxEmbeds = 10

func Events(as *utils.AppState, r *Registry) {
	r.Add(&discordgo.ApplicationCommand{
		Name:        "events",
		Description: "List upcoming events.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "from",
				Description: "Start of the range, e.g. \"today\" or \"next monday\"",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "to",
				Description: "End of the range, defaults to a week after the start",
			},
		},
	}, eventsHandler(as))
}

// eventsRange parses the optional bounds; without "from" the range starts now.
func eventsRange(parser *when.Parser, from, to string, now time.Time) (time.Time, time.Time, error) {
	start := now
	if from != "" {
		parsed, err := parser.Parse(from, now)
		if err != nil || parsed == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("can't understand %q", from)
		}
		start = parsed.Time
	}
	end := start.Add(7 * 24 * time.Hour)
	if to != "" {
		parsed, err := parser.Parse(to, start)
		if err != nil || parsed == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("can't understand %q", to)
		}
		end = parsed.Time
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("the end is before the start")
	}
	return start, end, nil
}

func upcomingEventEmbeds(ctx context.Context, db bun.IDB, start, end time.Time) ([]*discordgo.MessageEmbed, error) {
	eventModels := make([]model.Event, 0)
	if err := db.NewSelect().
		Model(&eventModels).
		Where("starts_at >= ?", start.UTC().Unix()).
		Where("starts_at <= ?", end.UTC().Unix()).
		Order("starts_at ASC").
		Limit(maxEmbeds).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("upcomingEventEmbeds: %w", err)
	}
	embeds := make([]*discordgo.MessageEmbed, len(eventModels))
	for i, event := range eventModels {
		embeds[i] = event.ToDiscordEmbed(utils.ModeLabel(event.Mode))
	}
	return embeds, nil
}

func eventsHandler(as *utils.AppState) CmdHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		optionMap := make(map[string]string)
		for _, opt := range i.ApplicationCommandData().Options {
			optionMap[opt.Name] = opt.StringValue()
		}

		start, end, err := eventsRange(as.When, optionMap["from"], optionMap["to"],
			time.Now().In(as.Config.GetLocation()))
		if err != nil {
			hiddenReply(s, i, err.Error())
			return nil
		}

		embeds, err := upcomingEventEmbeds(context.Background(), as.BunDB, start, end)
		if err != nil {
			hiddenReply(s, i, "Can't get events")
			return err
		}
		if len(embeds) == 0 {
			hiddenReply(s, i, "No events in that range")
			return nil
		}

		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: embeds,
			},
		}); err != nil {
			slog.Warn("eventsHandler: can't respond", "error", err)
		}
		return nil
	}
}
