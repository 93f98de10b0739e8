package utils

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	port string

	eventsEndpoint string
	submitTimeout  time.Duration
	sessionTTL     time.Duration

	databasePath string
	imageDir     string
	location     *time.Location

	metricCollectionInterval time.Duration

	staticWebClientDir string

	discordAppToken  string
	discordChannelID string
	discordGuildID   string
}

func durationEnv(name, fallback string) time.Duration {
	value := os.Getenv(name)
	if value == "" {
		value = fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Error("invalid duration", "env", name, "value", value, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", name, value)
	return duration
}

func portEnv() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Debug("env", "PORT", port)
	return port
}

func eventsEndpointEnv(port string) string {
	eventsEndpoint := os.Getenv("EVENTS_ENDPOINT")
	if eventsEndpoint == "" {
		eventsEndpoint = "http://localhost:" + port + "/api/events"
	}
	if _, err := url.ParseRequestURI(eventsEndpoint); err != nil {
		slog.Error("invalid EVENTS_ENDPOINT", "value", eventsEndpoint, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", "EVENTS_ENDPOINT", eventsEndpoint)
	return eventsEndpoint
}

func NewConfig() *Config {
	c := &Config{
		port: portEnv(),

		submitTimeout: durationEnv("SUBMIT_TIMEOUT", "30s"),
		sessionTTL:    durationEnv("SESSION_TTL", "30m"),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		imageDir: func() string {
			imageDir := os.Getenv("IMAGE_DIR")
			if imageDir == "" {
				imageDir = "./images"
			}
			if err := os.MkdirAll(imageDir, 0o755); err != nil {
				slog.Error("can't create IMAGE_DIR", "dir", imageDir, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "IMAGE_DIR", imageDir)
			return filepath.Clean(imageDir)
		}(),
		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		metricCollectionInterval: durationEnv("METRIC_COLLECTION_INTERVAL", "15s"),

		staticWebClientDir: func() string {
			staticWebClientDir := os.Getenv("STATIC_WEB_CLIENT_DIR")
			if staticWebClientDir == "" {
				slog.Debug("STATIC_WEB_CLIENT_DIR is not set, not serving a web client")
				return ""
			}
			info, err := os.Stat(staticWebClientDir)
			if err != nil {
				slog.Error("can't get info of STATIC_WEB_CLIENT_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("STATIC_WEB_CLIENT_DIR is not a directory", "dir", staticWebClientDir)
				os.Exit(1)
			}
			slog.Debug("env", "STATIC_WEB_CLIENT_DIR", staticWebClientDir)
			return filepath.Clean(staticWebClientDir)
		}(),

		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if discordAppToken == "" {
				slog.Info("DISCORD_APP_TOKEN is not set, new events won't be announced")
				return ""
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:min(3, len(discordAppToken))]+"...")
			return discordAppToken
		}(),
		discordChannelID: func() string {
			discordChannelID := os.Getenv("DISCORD_CHANNEL_ID")
			slog.Debug("env", "DISCORD_CHANNEL_ID", discordChannelID)
			return discordChannelID
		}(),
		discordGuildID: func() string {
			discordGuildID := os.Getenv("DISCORD_GUILD_ID")
			if discordGuildID == "" {
				slog.Debug("DISCORD_GUILD_ID is not set, slash commands will be global")
			}
			return discordGuildID
		}(),
	}

	c.eventsEndpoint = eventsEndpointEnv(c.port)

	if c.discordAppToken != "" && c.discordChannelID == "" {
		slog.Warn("DISCORD_APP_TOKEN is set without DISCORD_CHANNEL_ID, announcements disabled")
		c.discordAppToken = ""
	}

	return c
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get EVENTS_ENDPOINT env, default to this server's own /api/events
func (c *Config) GetEventsEndpoint() string {
	return c.eventsEndpoint
}

// Get SUBMIT_TIMEOUT env, default to 30s
func (c *Config) GetSubmitTimeout() time.Duration {
	return c.submitTimeout
}

// Get SESSION_TTL env, default to 30m
func (c *Config) GetSessionTTL() time.Duration {
	return c.sessionTTL
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get IMAGE_DIR env, default to ./images
func (c *Config) GetImageDir() string {
	return c.imageDir
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get STATIC_WEB_CLIENT_DIR env, empty when not serving a client
func (c *Config) GetStaticWebClientDir() string {
	return c.staticWebClientDir
}

// Get DISCORD_APP_TOKEN env, empty when announcements are disabled
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CHANNEL_ID env
func (c *Config) GetDiscordChannelID() string {
	return c.discordChannelID
}

// Get DISCORD_GUILD_ID env, empty registers slash commands globally
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// DefaultConfig returns the built-in defaults without reading the
// environment or touching the filesystem.
func DefaultConfig() *Config {
	return &Config{
		port:                     "8080",
		eventsEndpoint:           "http://localhost:8080/api/events",
		submitTimeout:            30 * time.Second,
		sessionTTL:               30 * time.Minute,
		databasePath:             "./sqlite.db",
		imageDir:                 "./images",
		location:                 time.UTC,
		metricCollectionInterval: 15 * time.Second,
	}
}

// NewClientConfig reads only what a submitting client needs: PORT,
// EVENTS_ENDPOINT and SUBMIT_TIMEOUT. Nothing is created on disk.
func NewClientConfig() *Config {
	c := DefaultConfig()
	c.port = portEnv()
	c.submitTimeout = durationEnv("SUBMIT_TIMEOUT", "30s")
	c.eventsEndpoint = eventsEndpointEnv(c.port)
	return c
}

// Setters for values overridden by command line flags.

func (c *Config) SetPort(port string) {
	c.port = port
}

func (c *Config) SetEventsEndpoint(eventsEndpoint string) {
	c.eventsEndpoint = eventsEndpoint
}

func (c *Config) SetDatabasePath(databasePath string) {
	c.databasePath = databasePath
}

func (c *Config) SetImageDir(imageDir string) {
	c.imageDir = filepath.Clean(imageDir)
}

func (c *Config) SetSessionTTL(sessionTTL time.Duration) {
	c.sessionTTL = sessionTTL
}
