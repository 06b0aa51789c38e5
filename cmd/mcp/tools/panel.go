package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azureconfig "github.com/yuanzhangdck/azure-glass/service/azure/config"
	azurecosts "github.com/yuanzhangdck/azure-glass/service/azure/costs"
	azureidentity "github.com/yuanzhangdck/azure-glass/service/azure/identity"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
	azureinstance "github.com/yuanzhangdck/azure-glass/service/azure/instance"
	azurenuke "github.com/yuanzhangdck/azure-glass/service/azure/nuke"
)

// RegisterPanelTools registers the read-only panel tools with the MCP
// server. All Azure tools use ambient credentials; mutations stay on
// the HTTP surface.
func RegisterPanelTools(s *server.MCPServer, subscriptionID, dataDir string) {
	s.AddTool(
		mcp.NewTool("azure_list_instances",
			mcp.WithDescription("List all panel-managed virtual machines with their public addresses. Requires AZURE_SUBSCRIPTION_ID."),
		),
		makeListInstancesHandler(subscriptionID),
	)

	s.AddTool(
		mcp.NewTool("azure_get_subscription_info",
			mcp.WithDescription("Get Azure subscription details including ID, display name, and state. Requires AZURE_SUBSCRIPTION_ID."),
		),
		makeSubscriptionInfoHandler(subscriptionID),
	)

	s.AddTool(
		mcp.NewTool("azure_get_current_month_costs",
			mcp.WithDescription("Get Azure costs for the current month, broken down by service. Requires AZURE_SUBSCRIPTION_ID."),
		),
		makeCurrentMonthCostsHandler(subscriptionID),
	)

	s.AddTool(
		mcp.NewTool("azure_get_nuke_status",
			mcp.WithDescription("Read the persisted status of the last bulk-deletion sweep."),
		),
		makeNukeStatusHandler(dataDir),
	)
}

func sidecarLogger() *slog.Logger {
	// stdout carries the MCP wire protocol.
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func makeListInstancesHandler(subscriptionID string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if subscriptionID == "" {
			return mcp.NewToolResultError("AZURE_SUBSCRIPTION_ID environment variable is required"), nil
		}

		cfgSvc, err := azureconfig.NewService(subscriptionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure credential: %v", err)), nil
		}

		api, err := azureapi.NewService(subscriptionID, cfgSvc.GetCredential(), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure clients: %v", err)), nil
		}

		logger := sidecarLogger()
		infra := azureinfra.NewService(subscriptionID, api, logger)
		instances := azureinstance.NewService(api, infra, logger)

		list, err := instances.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list instances: %v", err)), nil
		}

		data, _ := json.MarshalIndent(list, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeSubscriptionInfoHandler(subscriptionID string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if subscriptionID == "" {
			return mcp.NewToolResultError("AZURE_SUBSCRIPTION_ID environment variable is required"), nil
		}

		cfgSvc, err := azureconfig.NewService(subscriptionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure credential: %v", err)), nil
		}

		identitySvc, err := azureidentity.NewService(subscriptionID, cfgSvc.GetCredential(), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure identity service: %v", err)), nil
		}

		info, err := identitySvc.GetSubscriptionInfo(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get subscription info: %v", err)), nil
		}

		data, _ := json.MarshalIndent(info, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeCurrentMonthCostsHandler(subscriptionID string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if subscriptionID == "" {
			return mcp.NewToolResultError("AZURE_SUBSCRIPTION_ID environment variable is required"), nil
		}

		cfgSvc, err := azureconfig.NewService(subscriptionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure credential: %v", err)), nil
		}

		costSvc, err := azurecosts.NewService(subscriptionID, cfgSvc.GetCredential(), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Azure cost service: %v", err)), nil
		}

		summary, err := costSvc.CurrentMonthCosts(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get costs: %v", err)), nil
		}

		data, _ := json.MarshalIndent(summary, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func makeNukeStatusHandler(dataDir string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		nukeSvc := azurenuke.NewService(dataDir, sidecarLogger())

		status, err := nukeSvc.Status()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read nuke status: %v", err)), nil
		}

		data, _ := json.MarshalIndent(status, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}
