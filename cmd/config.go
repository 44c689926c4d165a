package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/weather"
)

// Defaults for file locations, relative to the working directory.
const (
	defaultTokenPath       = "token.json"
	defaultCredentialsPath = "credentials.json"
)

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

// loadGmailOptions reads the snippet pipeline settings from the environment.
func loadGmailOptions() (gmail.Options, error) {
	opts := gmail.DefaultOptions()

	pageSize, err := envInt("GMAIL_PAGE_SIZE", int(opts.PageSize))
	if err != nil {
		return opts, err
	}
	uiPageSize, err := envInt("GMAIL_UI_PAGE_SIZE", int(opts.UIPageSize))
	if err != nil {
		return opts, err
	}
	if pageSize < 1 || uiPageSize < 1 {
		return opts, fmt.Errorf("gmail page sizes must be positive")
	}
	opts.PageSize = int64(pageSize)
	opts.UIPageSize = int64(uiPageSize)

	if opts.UIPagination, err = envBool("GMAIL_UI_PAGINATION", opts.UIPagination); err != nil {
		return opts, err
	}
	if opts.Merge, err = gmail.ParseMergeMode(os.Getenv("GMAIL_MERGE_MODE")); err != nil {
		return opts, err
	}
	if opts.BodySource, err = gmail.ParseBodySource(os.Getenv("GMAIL_BODY_SOURCE")); err != nil {
		return opts, err
	}
	if opts.FetchQPS, err = envFloat("GMAIL_FETCH_QPS", opts.FetchQPS); err != nil {
		return opts, err
	}
	if opts.MaxPages, err = envInt("GMAIL_MAX_PAGES", opts.MaxPages); err != nil {
		return opts, err
	}
	return opts, nil
}

// googleConfig reads the OAuth file locations from the environment.
func googleConfig(interactive bool, logger logging.Logger, metrics *instrumentation.Metrics) google.Config {
	return google.Config{
		TokenPath:       envString("TOKEN_PATH", defaultTokenPath),
		CredentialsPath: envString("CREDENTIALS_PATH", defaultCredentialsPath),
		Interactive:     interactive,
		Logger:          logger,
		Metrics:         metrics,
	}
}

// weatherClient returns nil when TOMORROW_API_KEY is unset; the forecast
// tool then reports the missing key.
func weatherClient(logger logging.Logger, metrics *instrumentation.Metrics) *weather.Client {
	key := os.Getenv("TOMORROW_API_KEY")
	if key == "" {
		return nil
	}
	return weather.NewClient(key, weather.WithLogger(logger), weather.WithMetrics(metrics))
}
