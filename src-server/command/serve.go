package command

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devevents/src-server/handler"
	"devevents/src-server/metric"
	"devevents/src-server/route"
	"devevents/src-server/scheduler"
	"devevents/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port         string
		databasePath string
		imageDir     string
		announceEach time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form API, the events endpoint and the ical feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := utils.NewConfig()
			if cmd.Flags().Changed("port") {
				cfg.SetPort(port)
				if os.Getenv("EVENTS_ENDPOINT") == "" {
					cfg.SetEventsEndpoint("http://localhost:" + port + "/api/events")
				}
			}
			if cmd.Flags().Changed("database") {
				cfg.SetDatabasePath(databasePath)
			}
			if cmd.Flags().Changed("image-dir") {
				cfg.SetImageDir(imageDir)
			}

			as, err := utils.NewAppState(cfg)
			if err != nil {
				return err
			}

			if as.DgSession != nil {
				if err := as.DgSession.Open(); err != nil {
					slog.Error("can't open discord connection, announcements disabled", "error", err)
					as.DgSession = nil
				}
			}
			if as.DgSession != nil {
				if _, err := handler.Init(as); err != nil {
					slog.Error("can't set up slash commands", "error", err)
				}
			}

			metric.Init(as)
			go scheduler.EventAnnounce(as, announceEach)

			muxer := http.NewServeMux()
			muxer.Handle("GET /metrics", promhttp.Handler())
			route.Events(muxer, as)
			route.Ical(muxer, as)
			route.Form(muxer, as)
			route.SPA(muxer, as)
			server := &http.Server{
				Addr:    ":" + as.Config.GetPort(),
				Handler: route.LogMiddleware(muxer),
			}

			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("cannot start HTTP server", "error", err)
					as.AppCloseSignalChan <- syscall.SIGTERM
				}
			}()

			slog.Info("app is now running, press Ctrl+C to exit",
				"port", as.Config.GetPort(),
				"events_endpoint", as.Config.GetEventsEndpoint(),
			)

			signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			<-as.AppCloseSignalChan
			slog.Info("Gracefully shutting down...", "uptime", as.GetUptime())

			ctx, cancel := context.WithTimeout(context.Background(), as.Config.GetSubmitTimeout())
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				slog.Warn("can't shut the HTTP server down cleanly", "error", err)
			}
			as.GracefulShutdown()
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&databasePath, "database", "./sqlite.db", "sqlite database path (overrides DATABASE_PATH)")
	cmd.Flags().StringVar(&imageDir, "image-dir", "./images", "where uploaded images are stored (overrides IMAGE_DIR)")
	cmd.Flags().DurationVar(&announceEach, "announce-interval", 30*time.Second, "how often new events are announced on discord")
	return cmd
}
