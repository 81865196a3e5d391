package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/cache"
	"github.com/openclimdata/subgrib/pkg/config"
	"github.com/openclimdata/subgrib/pkg/convert"
	"github.com/openclimdata/subgrib/pkg/download"
	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fetch"
	"github.com/openclimdata/subgrib/pkg/httpc"
	"github.com/openclimdata/subgrib/pkg/inventory"
	"github.com/openclimdata/subgrib/pkg/model"
)

// These variables are set by the main package.
var (
	ConfigPath *string
	Verbose    *bool
)

func loadConfig() (*config.Config, error) {
	path := ""
	if ConfigPath != nil {
		path = *ConfigPath
	}
	if path == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level)

	return cfg, nil
}

func buildClient(cfg *config.Config) (*httpc.Client, error) {
	return httpc.New(cfg.BaseURL(), httpc.Options{
		Timeout:    cfg.Settings.HTTPTimeout,
		Retries:    cfg.Settings.Retries,
		RetrySleep: cfg.Settings.RetrySleep,
		Auth:       cfg.Authenticator(),
	})
}

func buildResolver(cfg *config.Config, client *httpc.Client) (*inventory.Resolver, error) {
	resolver := &inventory.Resolver{
		Client:      client,
		Concurrency: cfg.Settings.MaxConcurrent,
	}
	if cfg.Settings.CacheDir != "" {
		store, err := cache.NewStore(cfg.Settings.CacheDir)
		if err != nil {
			return nil, err
		}
		resolver.Store = store
	}
	return resolver, nil
}

func buildFetcher(cfg *config.Config) (*fetch.Fetcher, error) {
	client, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}
	resolver, err := buildResolver(cfg, client)
	if err != nil {
		return nil, err
	}
	return fetch.New(
		resolver,
		&download.Retriever{Client: client},
		&convert.Converter{
			GribSet:      cfg.Settings.GribSet,
			GribToNetCDF: cfg.Settings.GribToNetCDF,
		},
	), nil
}

// parseDates parses a comma-separated list of 2006-01-02 dates.
func parseDates(value string) ([]time.Time, error) {
	var dates []time.Time
	for _, part := range splitList(value) {
		d, err := time.ParseInLocation("2006-01-02", part, time.UTC)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid date %q, expected YYYY-MM-DD", part)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// parseSteps parses a comma-separated list of lead hours, where each element
// is either a single hour or an inclusive "from-to" range.
func parseSteps(value string) ([]int, error) {
	var steps []int
	for _, part := range splitList(value) {
		if from, to, ok := strings.Cut(part, "-"); ok && from != "" {
			lo, err1 := strconv.Atoi(from)
			hi, err2 := strconv.Atoi(to)
			if err1 != nil || err2 != nil {
				return nil, errors.Wrapf(errors.ErrConfiguration, "invalid step range %q", part)
			}
			steps = append(steps, inventory.Steps(lo, hi)...)
			continue
		}
		s, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid step %q", part)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func parseMembers(value string) ([]int, error) {
	var members []int
	for _, part := range splitList(value) {
		m, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid member %q", part)
		}
		members = append(members, m)
	}
	return members, nil
}

// parseArea parses "north,west,south,east" in degrees.
func parseArea(value string) (*model.Area, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, errors.Wrapf(errors.ErrConfiguration, "invalid area %q, expected N,W,S,E", value)
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "invalid area coordinate %q", part)
		}
		coords[i] = f
	}
	return &model.Area{North: coords[0], West: coords[1], South: coords[2], East: coords[3]}, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
