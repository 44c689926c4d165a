package weather_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
	"github.com/mtanzim/mcptools/internal/weather"
)

// ForecastTool is the forecast tool name.
const ForecastTool = "weather-forecast"

// RegisterWeatherTools registers the forecast tool with the MCP server
func RegisterWeatherTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	forecastTool := mcp.NewTool(ForecastTool,
		mcp.WithDescription(fmt.Sprintf("Get the %d day weather forecast for a location", weather.ForecastDays)),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Min(-90),
			mcp.Max(90),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Min(-180),
			mcp.Max(180),
			mcp.Description("Longitude of the location"),
		),
	)
	s.AddTool(forecastTool, common.InstrumentedToolHandler(ForecastTool, sc, handleForecast(sc)))
	return nil
}

func handleForecast(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("latitude")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		long, err := request.RequireFloat("longitude")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if lat < -90 || lat > 90 || long < -180 || long > 180 {
			return mcp.NewToolResultError(fmt.Sprintf("coordinates out of range: %v,%v", lat, long)), nil
		}

		client := sc.Weather()
		if client == nil {
			return common.Failure(sc.Logger(), ForecastTool, common.WeatherFailure, weather.ErrMissingAPIKey), nil
		}
		days, err := client.Forecast(ctx, lat, long)
		if err != nil {
			return common.Failure(sc.Logger(), ForecastTool, common.WeatherFailure, err), nil
		}
		return mcp.NewToolResultText(weather.Format(days)), nil
	}
}
