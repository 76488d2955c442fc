package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcpanel/internal/config"
	"mcpanel/pkg/sdk"

	"github.com/spf13/cobra"
)

const (
	envToken      = "MCPANEL_TOKEN"
	tokenFileName = "cli_token"
)

var (
	Client  *sdk.Client
	BaseURL string
	Token   string
)

var RootCmd = &cobra.Command{
	Use:   "mcpanel",
	Short: "CLI for the Minecraft server panel",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Client = sdk.NewClient(BaseURL)
		Client.SetToken(resolveToken())
	},
	Run: func(cmd *cobra.Command, args []string) {
		RunDashboard()
	},
}

func Execute(port int) {
	RootCmd.PersistentFlags().StringVar(&BaseURL, "url", fmt.Sprintf("http://localhost:%d", port), "URL of the panel daemon")
	RootCmd.PersistentFlags().StringVar(&Token, "token", "", "Bearer token (defaults to $"+envToken+" or the saved login)")

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func resolveToken() string {
	if Token != "" {
		return Token
	}
	if v := os.Getenv(envToken); v != "" {
		return v
	}
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.AppName(), tokenFileName), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0600)
}

func forgetToken() {
	if path, err := tokenPath(); err == nil {
		os.Remove(path)
	}
}
