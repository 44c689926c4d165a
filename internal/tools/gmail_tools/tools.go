package gmail_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
)

// Tool names.
const (
	ThreadSnippetsTool   = "gmail-thread-snippets"
	ThreadSnippetsUITool = "gmail-thread-snippets-ui"
	ThreadFullTool       = "gmail-thread-full"
	ThreadFullUITool     = "gmail-thread-full-ui"
	DraftResponseTool    = gmail.DraftToolName
)

// Lookback window bounds, in days.
const (
	MinDays       = 1
	MaxDays       = 60
	DefaultDays   = 7
	DefaultUIDays = 14
)

func daysOption(def int) mcp.ToolOption {
	return mcp.WithNumber("days",
		mcp.Min(MinDays),
		mcp.Max(MaxDays),
		mcp.DefaultNumber(float64(def)),
		mcp.Description(fmt.Sprintf("The number days of emails to read (%d to %d)", MinDays, MaxDays)),
	)
}

func threadIDOption() mcp.ToolOption {
	return mcp.WithString("threadId",
		mcp.Required(),
		mcp.Description("The id of the thread we are trying to read. It can be obtained from the gmail-thread-snippets tool."),
	)
}

// RegisterGmailTools registers all Gmail tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	snippetsTool := mcp.NewTool(ThreadSnippetsTool,
		mcp.WithDescription("Get my gmail snippets from threads from the last N days"),
		daysOption(DefaultDays),
	)
	s.AddTool(snippetsTool, common.InstrumentedToolHandler(ThreadSnippetsTool, sc, handleThreadSnippets(sc)))

	snippetsUITool := mcp.NewTool(ThreadSnippetsUITool,
		mcp.WithDescription("Get my gmail snippets from threads from the last N days as interactive UI resources with a reply form"),
		daysOption(DefaultUIDays),
		mcp.WithString("format",
			mcp.Enum(string(gmail.FormatHTML), string(gmail.FormatRemoteDOM)),
			mcp.DefaultString(string(gmail.FormatHTML)),
			mcp.Description("UI resource flavor: raw html or a remote-dom script"),
		),
	)
	s.AddTool(snippetsUITool, common.InstrumentedToolHandler(ThreadSnippetsUITool, sc, handleThreadSnippetsUI(sc)))

	fullTool := mcp.NewTool(ThreadFullTool,
		mcp.WithDescription("Get the full messages for a single thread"),
		threadIDOption(),
	)
	s.AddTool(fullTool, common.InstrumentedToolHandler(ThreadFullTool, sc, handleThreadFull(sc)))

	fullUITool := mcp.NewTool(ThreadFullUITool,
		mcp.WithDescription("Get the full messages for a single thread as an HTML UI resource"),
		threadIDOption(),
	)
	s.AddTool(fullUITool, common.InstrumentedToolHandler(ThreadFullUITool, sc, handleThreadFullUI(sc)))

	draftTool := mcp.NewTool(DraftResponseTool,
		mcp.WithDescription("Creates draft responses to specified messages in Gmail."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("the address of the sender of the original email"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("the content of the response"),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("the threadId of the original message"),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("the messageId of the original message"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("the subject of the original message"),
		),
	)
	s.AddTool(draftTool, common.InstrumentedToolHandler(DraftResponseTool, sc, handleDraftResponse(sc)))

	return nil
}
