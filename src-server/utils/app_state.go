package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"devevents/src-server/client"
	"devevents/src-server/form"
	"devevents/src-server/model"
	"devevents/src-server/preview"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	When   *when.Parser
	// nil unless DISCORD_APP_TOKEN and DISCORD_CHANNEL_ID are set
	DgSession *discordgo.Session

	// where form sessions send their drafts
	Client  form.Sender
	Decoder form.Decoder

	MetricChans *Metric

	// live form sessions; each one is evicted after SESSION_TTL without use
	formSessionsMu sync.Mutex
	formSessions   map[string]*FormSessionInfo

	startTime              time.Time
	AppCloseSignalChan     chan os.Signal
	gracefulShutdownMu     sync.Mutex
	gracefulShutdownChans  []*chan struct{}
	gracefulShutdownClosed bool
}

func NewWhenParser() *when.Parser {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return parser
}

func NewAppState(cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		When:               NewWhenParser(),
		Client:             client.New(cfg.GetEventsEndpoint(), cfg.GetSubmitTimeout()),
		Decoder:            preview.DataURLDecoder{},
		MetricChans:        NewMetric(),
		formSessions:       make(map[string]*FormSessionInfo),
		startTime:          time.Now(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't open sqlite database: %w", err)
	}
	if cfg.GetDatabasePath() == ":memory:" {
		// every connection would get its own empty database otherwise
		as.RawDB.SetMaxOpenConns(1)
	} else {
		as.RawDB.SetMaxIdleConns(8)
	}
	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	// discord
	if token := cfg.GetDiscordAppToken(); token != "" {
		as.DgSession, err = discordgo.New("Bot " + token)
		if err != nil {
			return nil, fmt.Errorf("NewAppState: can't create discord session: %w", err)
		}
	}

	go as.evictIdleFormSessions()

	return as, nil
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime)
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	if as.gracefulShutdownClosed {
		close(ch)
	}
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, &ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	if as.gracefulShutdownClosed {
		as.gracefulShutdownMu.Unlock()
		return
	}
	as.gracefulShutdownClosed = true
	for _, ch := range as.gracefulShutdownChans {
		close(*ch)
	}
	as.gracefulShutdownMu.Unlock()

	as.formSessionsMu.Lock()
	for id, info := range as.formSessions {
		info.Session.Close()
		delete(as.formSessions, id)
	}
	as.formSessionsMu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
