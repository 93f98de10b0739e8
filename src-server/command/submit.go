package command

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"devevents/src-server/client"
	"devevents/src-server/form"
	"devevents/src-server/model"
	"devevents/src-server/preview"
	"devevents/src-server/utils"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		fields    = make(map[string]*string)
		tags      []string
		agenda    []string
		imagePath string
		endpoint  string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill an event form from flags and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := form.New(client.New(endpoint, timeout), preview.DataURLDecoder{})
			defer session.Close()

			for name, value := range fields {
				if !cmd.Flags().Changed(name) {
					continue
				}
				if err := session.SetField(name, *value); err != nil {
					return err
				}
			}
			for _, tag := range tags {
				session.AddTag(tag)
			}
			for i, entry := range agenda {
				clock, topic, ok := strings.Cut(entry, "=")
				if !ok {
					return fmt.Errorf("--agenda %q: want \"<time>=<topic>\"", entry)
				}
				session.AddAgendaItem()
				session.UpdateAgendaItem(i, form.AGENDA_FIELD_TIME, strings.TrimSpace(clock))
				session.UpdateAgendaItem(i, form.AGENDA_FIELD_TOPIC, strings.TrimSpace(topic))
			}

			if imagePath != "" {
				image, err := readImage(imagePath)
				if err != nil {
					return err
				}
				session.SelectImage(image)
				session.WaitImage()
				if session.Draft().ImagePreview == "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s doesn't look like an image, sending it anyway\n", imagePath)
				}
			}

			unsubscribe := session.Subscribe(func(s form.Snapshot) {
				if s.Loading() {
					fmt.Fprintln(cmd.ErrOrStderr(), "Submitting...")
				}
			})
			defer unsubscribe()

			err := session.Submit(context.Background())
			fmt.Fprintln(cmd.OutOrStdout(), session.Snapshot().Message)
			return err
		},
	}

	for _, name := range []string{
		form.FIELD_TITLE,
		form.FIELD_DESCRIPTION,
		form.FIELD_ORGANIZER,
		form.FIELD_AUDIENCE,
		form.FIELD_TIME,
		form.FIELD_VENUE,
		form.FIELD_OVERVIEW,
		form.FIELD_LOCATION,
		form.FIELD_DATE,
	} {
		fields[name] = cmd.Flags().String(name, "", "event "+name)
	}
	fields[form.FIELD_MODE] = cmd.Flags().String(form.FIELD_MODE, string(model.EVENT_MODE_OFFLINE), "offline, online or hybrid")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "add a tag, repeatable")
	cmd.Flags().StringArrayVar(&agenda, "agenda", nil, "add an agenda item as \"<time>=<topic>\", repeatable")
	cmd.Flags().StringVar(&imagePath, "image", "", "cover image file (required)")
	cfg := utils.NewClientConfig()
	cmd.Flags().StringVar(&endpoint, "endpoint", cfg.GetEventsEndpoint(), "events endpoint (defaults to EVENTS_ENDPOINT)")
	cmd.Flags().DurationVar(&timeout, "timeout", cfg.GetSubmitTimeout(), "give up on the request after this long (defaults to SUBMIT_TIMEOUT)")
	return cmd
}

func readImage(path string) (model.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ImageFile{}, fmt.Errorf("can't read image: %w", err)
	}
	return model.ImageFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}
