// Package handler answers Discord slash commands.
package handler

import (
	"fmt"
	"log/slog"
	"sync"

	"devevents/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type CmdHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// Registry maps slash command names to their definitions and handlers.
type Registry struct {
	mu       sync.RWMutex
	infos    map[string]*discordgo.ApplicationCommand
	handlers map[string]CmdHandler
}

func NewRegistry() *Registry {
	return &Registry{
		infos:    make(map[string]*discordgo.ApplicationCommand),
		handlers: make(map[string]CmdHandler),
	}
}

func (r *Registry) Add(info *discordgo.ApplicationCommand, handler CmdHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos[info.Name] = info
	r.handlers[info.Name] = handler
}

func (r *Registry) Get(name string) (CmdHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

func (r *Registry) Commands() []*discordgo.ApplicationCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]*discordgo.ApplicationCommand, 0, len(r.infos))
	for _, info := range r.infos {
		cmds = append(cmds, info)
	}
	return cmds
}

// Init registers every slash command, hooks the dispatcher into the Discord
// session and tells Discord about the commands. The session must be open.
func Init(as *utils.AppState) (*Registry, error) {
	r := NewRegistry()
	Ping(as, r)
	Events(as, r)

	as.DgSession.AddHandler(r.Dispatch)

	if as.DgSession.State == nil || as.DgSession.State.User == nil {
		return r, fmt.Errorf("handler.Init: discord session isn't open")
	}
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.DgSession.State.User.ID,
		as.Config.GetDiscordGuildID(),
		r.Commands(),
	); err != nil {
		return r, fmt.Errorf("handler.Init: can't create slash commands: %w", err)
	}
	return r, nil
}

// Dispatch routes a slash command to its handler.
func (r *Registry) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	handler, ok := r.Get(name)
	if !ok {
		hiddenReply(s, i, "Unknown command")
		slog.Debug("someone used an unknown command", "command", name)
		return
	}
	if err := handler(s, i); err != nil {
		slog.Error("handler error", "command", name, "error", err)
	}
}

// Send a reply only the caller can see.
func hiddenReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	}); err != nil {
		slog.Warn("can't respond", "error", err)
	}
}
