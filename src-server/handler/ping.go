package handler

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"devevents/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState, r *Registry) {
	r.Add(&discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Show how the event form server is doing.",
	}, pingHandler(as))
}

func pingEmbed(uptime time.Duration, formSessions int, heartbeat time.Duration) *discordgo.MessageEmbed {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memUsage := float64(m.Sys) / 1024 / 1024

	return &discordgo.MessageEmbed{
		Title: "Pong!",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Uptime",
				Value: uptime.Truncate(time.Second).String(),
			},
			{
				Name:   "Form sessions",
				Value:  fmt.Sprintf("%d", formSessions),
				Inline: true,
			},
			{
				Name:   "Latency",
				Value:  fmt.Sprintf("%dms", heartbeat.Milliseconds()),
				Inline: true,
			},
			{
				Name:   "Go version",
				Value:  runtime.Version(),
				Inline: true,
			},
			{
				Name:   "Memory",
				Value:  fmt.Sprintf("%.2fMB", memUsage),
				Inline: true,
			},
		},
	}
}

func pingHandler(as *utils.AppState) CmdHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
				Embeds: []*discordgo.MessageEmbed{
					pingEmbed(as.GetUptime(), as.FormSessionCount(), s.HeartbeatLatency()),
				},
			},
		}); err != nil {
			slog.Warn("pingHandler: can't respond", "error", err)
		}
		return nil
	}
}
