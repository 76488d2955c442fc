package cmd

import (
	"fmt"
	"log"
	"strings"

	"mcpanel/internal/cli/ui"
	"mcpanel/pkg/sdk"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage servers",
}

var createReq sdk.CreateServerRequest

var serverCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new server",
	Run: func(cmd *cobra.Command, args []string) {
		if createReq.Path == "" {
			createReq.Path = createReq.Name
		}
		handleCreate(createReq)
	},
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all servers",
	Run: func(cmd *cobra.Command, args []string) {
		handleList()
	},
}

var serverInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show server details and resource usage",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleInfo(args[0])
	},
}

var serverStartCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "Start a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.StartServer(args[0]); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		fmt.Println("Start command sent.")
	},
}

var serverStopCmd = &cobra.Command{
	Use:   "stop [name]",
	Short: "Stop a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.StopServer(args[0]); err != nil {
			log.Fatalf("Error stopping server: %v", err)
		}
		fmt.Println("Stop command sent.")
	},
}

var serverRestartCmd = &cobra.Command{
	Use:   "restart [name]",
	Short: "Restart a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.RestartServer(args[0]); err != nil {
			log.Fatalf("Error restarting server: %v", err)
		}
		fmt.Println("Server restarted.")
	},
}

var serverDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.DeleteServer(args[0]); err != nil {
			log.Fatalf("Error deleting server: %v", err)
		}
		fmt.Println("Server deleted successfully.")
	},
}

var serverRenameCmd = &cobra.Command{
	Use:   "rename [name] [new-name]",
	Short: "Rename a server",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := Client.RenameServer(args[0], args[1]); err != nil {
			log.Fatalf("Error renaming server: %v", err)
		}
		fmt.Printf("Server renamed to %s.\n", args[1])
	},
}

var serverEventsCmd = &cobra.Command{
	Use:   "events [name]",
	Short: "Follow live events, optionally for one server",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		ui.RunEvents(Client, filter)
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions [mc-version]",
	Short: "List Minecraft releases, or Forge builds for a release",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var versions []string
		var err error
		if len(args) == 1 {
			versions, err = Client.ListForgeVersions(args[0])
		} else {
			versions, err = Client.ListMCVersions()
		}
		if err != nil {
			log.Fatalf("Error listing versions: %v", err)
		}
		fmt.Println(strings.Join(versions, "\n"))
	},
}

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "List directories under the servers path",
	Run: func(cmd *cobra.Command, args []string) {
		dirs, err := Client.ListServerDirs()
		if err != nil {
			log.Fatalf("Error listing directories: %v", err)
		}
		for _, d := range dirs {
			fmt.Printf("- %s\n", d)
		}
	},
}

func init() {
	serverCreateCmd.Flags().StringVar(&createReq.Name, "name", "", "Server name")
	serverCreateCmd.Flags().StringVar(&createReq.Type, "type", "vanilla", "Server type (vanilla, forge)")
	serverCreateCmd.Flags().StringVar(&createReq.Path, "path", "", "Directory under the servers path (defaults to the name)")
	serverCreateCmd.Flags().StringVar(&createReq.MCVersion, "version", "", "Minecraft version")
	serverCreateCmd.Flags().StringVar(&createReq.ModloaderVersion, "modloader", "", "Modloader version for non-vanilla servers")
	serverCreateCmd.Flags().IntVar(&createReq.RAM, "ram", 0, "RAM in MB")
	serverCreateCmd.Flags().BoolVar(&createReq.Autostart, "autostart", false, "Start with the daemon")
	serverCreateCmd.MarkFlagRequired("name")
	serverCreateCmd.MarkFlagRequired("version")
	serverCreateCmd.MarkFlagRequired("ram")

	serverCmd.AddCommand(serverCreateCmd, serverListCmd, serverInfoCmd, serverStartCmd, serverStopCmd,
		serverRestartCmd, serverDeleteCmd, serverRenameCmd, serverEventsCmd, versionsCmd, dirsCmd)
	RootCmd.AddCommand(serverCmd)
}

func handleCreate(req sdk.CreateServerRequest) {
	fmt.Printf("Creating %s (%s %s)...\n", req.Name, req.Type, req.MCVersion)
	if err := Client.CreateServer(req); err != nil {
		log.Fatalf("Error creating server: %v", err)
	}
	fmt.Println("Server created.")
}

func handleList() {
	servers, err := Client.ListServers()
	if err != nil {
		log.Fatalf("Error listing servers: %v", err)
	}

	fmt.Println("Servers:")
	for _, s := range servers {
		fmt.Printf("- %s [%s] %s\n", s.Name, s.Status, ui.DescribeVersion(s))
	}
}

func handleInfo(name string) {
	s, err := Client.GetServer(name)
	if err != nil {
		log.Fatalf("Error fetching server: %v", err)
	}

	fmt.Printf("Name:      %s\n", s.Name)
	fmt.Printf("Status:    %s\n", s.Status)
	fmt.Printf("Version:   %s\n", ui.DescribeVersion(*s))
	fmt.Printf("Path:      %s\n", s.Path)
	fmt.Printf("RAM:       %d MB\n", s.RAM)
	fmt.Printf("Autostart: %t\n", s.Autostart)

	if stats, err := Client.GetServerStats(name); err == nil && s.Status == "RUNNING" {
		fmt.Printf("CPU:       %.1f%%\n", stats.CPU)
		fmt.Printf("Memory:    %s\n", ui.FormatBytes(stats.RAM))
	}
}
