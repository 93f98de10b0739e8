package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"devevents/src-server/model"
	"devevents/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

// Discord refuses messages with more embeds than this.
const maxEmbedsPerMessage = 10

type EmbedSender interface {
	ChannelMessageSendEmbeds(channelID string, embeds []*discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// AnnounceEvents posts every event not announced yet to channelID, oldest
// first, and marks the ones that went out. Returns how many were announced.
func AnnounceEvents(ctx context.Context, db bun.IDB, sender EmbedSender, channelID string) (int, error) {
	eventModels := make([]model.Event, 0)
	if err := db.NewSelect().
		Model(&eventModels).
		Where("announced = ?", false).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return 0, fmt.Errorf("AnnounceEvents: can't get events: %w", err)
	}

	announced := 0
	for begin := 0; begin < len(eventModels); begin += maxEmbedsPerMessage {
		chunk := eventModels[begin:min(begin+maxEmbedsPerMessage, len(eventModels))]
		embeds := make([]*discordgo.MessageEmbed, len(chunk))
		ids := make([]string, len(chunk))
		for i, event := range chunk {
			embeds[i] = event.ToDiscordEmbed(utils.ModeLabel(event.Mode))
			ids[i] = event.ID
		}

		if _, err := sender.ChannelMessageSendEmbeds(channelID, embeds); err != nil {
			return announced, fmt.Errorf("AnnounceEvents: can't send message: %w", err)
		}
		if _, err := db.NewUpdate().
			Model((*model.Event)(nil)).
			Set("announced = ?", true).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return announced, fmt.Errorf("AnnounceEvents: can't mark events as announced: %w", err)
		}
		announced += len(chunk)
	}
	return announced, nil
}

// EventAnnounce announces new events on Discord every interval until the app
// shuts down. Returns right away when Discord isn't configured.
func EventAnnounce(as *utils.AppState, interval time.Duration) {
	if as.DgSession == nil {
		return
	}
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-*gracefulShutdownCh:
			return
		case <-ticker.C:
			start := time.Now()
			n, err := AnnounceEvents(context.Background(), as.BunDB, as.DgSession, as.Config.GetDiscordChannelID())
			if err != nil {
				slog.Error("can't announce events", "error", err)
			}
			if n > 0 {
				utils.Observe(as.MetricChans.DiscordAnnounce, float64(time.Since(start).Microseconds()))
				slog.Info("events announced", "count", n)
			}
		}
	}
}
