package gmail_tools

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
)

func draftRequestArgs(request mcp.CallToolRequest) (gmail.DraftRequest, error) {
	var req gmail.DraftRequest
	var err error
	if req.Address, err = request.RequireString("address"); err != nil {
		return req, err
	}
	if _, err := mail.ParseAddress(req.Address); err != nil {
		return req, fmt.Errorf("address must be an email address: %w", err)
	}
	if req.Content, err = request.RequireString("content"); err != nil {
		return req, err
	}
	if req.ThreadID, err = request.RequireString("threadId"); err != nil {
		return req, err
	}
	if req.MessageID, err = request.RequireString("messageId"); err != nil {
		return req, err
	}
	if req.Subject, err = request.RequireString("subject"); err != nil {
		return req, err
	}
	return req, nil
}

func handleDraftResponse(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := draftRequestArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		svc, err := sc.GmailService(ctx)
		if err != nil {
			return common.Failure(sc.Logger(), DraftResponseTool, common.DraftFailure, err), nil
		}
		text, err := svc.DraftReply(ctx, req)
		if err != nil {
			return common.Failure(sc.Logger(), DraftResponseTool, common.DraftFailure, err), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}
