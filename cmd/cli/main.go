package main

import (
	"mcpanel/internal/cli/cmd"
	"mcpanel/internal/config"
)

func main() {
	port := config.GetPort()
	cmd.Execute(port)
}
