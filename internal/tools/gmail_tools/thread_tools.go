package gmail_tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
	"github.com/mtanzim/mcptools/internal/ui"
)

// daysArg reads and bounds-checks the days argument.
func daysArg(request mcp.CallToolRequest, def int) (int, error) {
	raw := request.GetFloat("days", float64(def))
	if raw != math.Trunc(raw) {
		return 0, fmt.Errorf("days must be a whole number, got %v", raw)
	}
	days := int(raw)
	if days < MinDays || days > MaxDays {
		return 0, fmt.Errorf("days must be between %d and %d, got %d", MinDays, MaxDays, days)
	}
	return days, nil
}

func handleThreadSnippets(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days, err := daysArg(request, DefaultDays)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		svc, err := sc.GmailService(ctx)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadSnippetsTool, common.GmailFailure, err), nil
		}
		text, err := svc.ThreadSnippets(ctx, days)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadSnippetsTool, common.GmailFailure, err), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func handleThreadSnippetsUI(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days, err := daysArg(request, DefaultUIDays)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format, err := gmail.ParseFormat(request.GetString("format", string(gmail.FormatHTML)))
		if err != nil || format == gmail.FormatText {
			return mcp.NewToolResultError(fmt.Sprintf("format must be %q or %q", gmail.FormatHTML, gmail.FormatRemoteDOM)), nil
		}

		svc, err := sc.GmailService(ctx)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadSnippetsUITool, common.GmailFailure, err), nil
		}
		fragments, err := svc.ThreadSnippetFragments(ctx, days, format)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadSnippetsUITool, common.GmailFailure, err), nil
		}
		if len(fragments) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No inbox threads in the last %d days.", days)), nil
		}

		resources := make([]mcp.EmbeddedResource, 0, len(fragments))
		for i, frag := range fragments {
			uri := ui.URI("gmail", "snippets", strconv.Itoa(i))
			if format == gmail.FormatRemoteDOM {
				resources = append(resources, ui.RemoteDOMResource(uri, frag))
			} else {
				resources = append(resources, ui.HTMLResource(uri, frag))
			}
		}
		return ui.Result(resources...), nil
	}
}

func handleThreadFull(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threadID, err := request.RequireString("threadId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		svc, err := sc.GmailService(ctx)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadFullTool, common.GmailFailure, err), nil
		}
		text, err := svc.ThreadText(ctx, threadID)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadFullTool, common.GmailFailure, err), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func handleThreadFullUI(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threadID, err := request.RequireString("threadId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		svc, err := sc.GmailService(ctx)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadFullUITool, common.GmailFailure, err), nil
		}
		html, err := svc.ThreadHTML(ctx, threadID)
		if err != nil {
			return common.Failure(sc.Logger(), ThreadFullUITool, common.GmailFailure, err), nil
		}
		return ui.Result(ui.HTMLResource(ui.URI("gmail", "thread", threadID), html)), nil
	}
}
