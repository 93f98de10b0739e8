package command

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "devevents",
		Short:        "Event authoring form server and client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the form API, the events endpoint and the ical feed
  devevents serve

  # Submit an event from the terminal
  devevents submit --title "Go meetup" --date 2026-11-02 --time 18:30 \
    --tag go --agenda "18:30=Intro" --image cover.png
`),
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSubmitCmd())
	return cmd
}
