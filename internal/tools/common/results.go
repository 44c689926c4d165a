package common

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
)

// Failure prefixes shown to users. The error message is appended.
const (
	GmailFailure   = "Something went wrong. Cannot get gmail message threads."
	DraftFailure   = "Something went wrong. Cannot create the gmail draft."
	WeatherFailure = "Something went wrong. Cannot get the weather forecast."
)

// FailureText formats prefix followed by the error message.
func FailureText(prefix string, err error) string {
	if err == nil {
		return prefix
	}
	return fmt.Sprintf("%s Error: %s", prefix, err.Error())
}

// Failure logs err and turns it into a tool result. A missing Gmail
// authorization becomes the auth hint instead.
func Failure(logger logging.Logger, toolName, prefix string, err error) *mcp.CallToolResult {
	if errors.Is(err, google.ErrNotAuthorized) {
		logger.Info("gmail not authorized", logging.Tool(toolName))
		return mcp.NewToolResultText(google.AuthHint())
	}
	logger.Error("tool failed", logging.Tool(toolName), logging.Err(err))
	return mcp.NewToolResultError(FailureText(prefix, err))
}
