package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/yuanzhangdck/azure-glass/cmd/mcp/tools"
)

func main() {
	cfg := LoadConfig()

	s := server.NewMCPServer(
		"azure-glass-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tools.RegisterPanelTools(s, cfg.AzureSubscriptionID, cfg.DataDir)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
