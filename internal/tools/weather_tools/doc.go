// Package weather_tools provides the weather-forecast MCP tool backed by
// the tomorrow.io daily forecast.
package weather_tools
