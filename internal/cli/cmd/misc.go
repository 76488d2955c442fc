package cmd

import (
	"fmt"
	"log"

	"mcpanel/internal/cli/ui"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the web dashboard in a browser",
	Run: func(cmd *cobra.Command, args []string) {
		url := Client.BaseURL() + "/app/dashboard"
		if err := browser.OpenURL(url); err != nil {
			log.Fatalf("Error opening browser: %v", err)
		}
		fmt.Printf("Opened %s\n", url)
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow live events for all servers",
	Run: func(cmd *cobra.Command, args []string) {
		ui.RunEvents(Client, "")
	},
}

func init() {
	RootCmd.AddCommand(openCmd, eventsCmd)
}

// RunDashboard alternates between the server list and the event view of the
// selected server until the user quits.
func RunDashboard() {
	for {
		name := ui.RunServerList(Client)
		if name == "" {
			return
		}
		if !ui.RunEvents(Client, name) {
			return
		}
	}
}
