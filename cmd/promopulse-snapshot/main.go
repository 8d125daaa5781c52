// Command promopulse-snapshot builds a frozen analytics snapshot from a
// local CSV or XLSX dataset without running the server. The filter
// configuration comes from an optional YAML file:
//
//	client_name: Acme Beverages
//	granularity: daily
//	trend_window: 7
//	filters:
//	  chain:
//	    kind: enum
//	    values: [Tesco, Asda]
//	exclusions:
//	  exclude_first_days: true
//	  exclude_first_count: 3
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"promopulse/internal/analytics"
	"promopulse/internal/config"
	"promopulse/internal/dataset"
	"promopulse/internal/exporter"
	"promopulse/internal/infrastructure"
	"promopulse/internal/snapshot"
)

type snapshotConfig struct {
	ClientName  string `yaml:"client_name"`
	Granularity string `yaml:"granularity"`
	TrendWindow int    `yaml:"trend_window"`

	Filters    map[string]filterConfig `yaml:"filters"`
	Exclusions exclusionConfig         `yaml:"exclusions"`
}

type filterConfig struct {
	Kind      string   `yaml:"kind"`
	Values    []string `yaml:"values"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	MinDate   string   `yaml:"min_date"`
	MaxDate   string   `yaml:"max_date"`
	Substring string   `yaml:"substring"`
}

type exclusionConfig struct {
	ExcludeFirstDays    bool     `yaml:"exclude_first_days"`
	ExcludeFirstCount   int      `yaml:"exclude_first_count"`
	ExcludeLastDays     bool     `yaml:"exclude_last_days"`
	ExcludeLastCount    int      `yaml:"exclude_last_count"`
	CustomExcludedDates []string `yaml:"custom_excluded_dates"`
}

func main() {
	input := flag.String("in", "", "path to the CSV or XLSX dataset (required)")
	confPath := flag.String("config", "", "YAML filter configuration file")
	outDir := flag.String("out", "", "export directory (defaults to the configured export dir)")
	verify := flag.Bool("verify", true, "replay the snapshot after building it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)

	if *input == "" {
		logger.Error("missing required -in flag")
		flag.Usage()
		os.Exit(2)
	}
	if *outDir == "" {
		*outDir = cfg.Export.Dir
	}

	snapConf := snapshotConfig{ClientName: "cli", Granularity: string(analytics.GranularityDaily)}
	if *confPath != "" {
		data, err := os.ReadFile(*confPath)
		if err != nil {
			logger.Error("failed to read config file",
				slog.String("path", *confPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &snapConf); err != nil {
			logger.Error("failed to parse config file",
				slog.String("path", *confPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	store, err := loadStore(*input)
	if err != nil {
		logger.Error("failed to ingest dataset",
			slog.String("path", *input),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset ingested",
		slog.String("name", store.Name),
		slog.Int("rows", store.Len()),
		slog.String("kind", string(store.Schema.Kind)))

	granularity := analytics.Granularity(snapConf.Granularity)
	if granularity == "" {
		granularity = analytics.GranularityDaily
	}
	if !granularity.Valid() {
		logger.Error("invalid granularity", slog.String("granularity", snapConf.Granularity))
		os.Exit(2)
	}

	snap := snapshot.Build(store, buildFilters(snapConf.Filters), analytics.ExclusionConfig{
		ExcludeFirstDays:    snapConf.Exclusions.ExcludeFirstDays,
		ExcludeFirstCount:   snapConf.Exclusions.ExcludeFirstCount,
		ExcludeLastDays:     snapConf.Exclusions.ExcludeLastDays,
		ExcludeLastCount:    snapConf.Exclusions.ExcludeLastCount,
		CustomExcludedDates: snapConf.Exclusions.CustomExcludedDates,
	}, granularity, snapConf.TrendWindow, snapConf.ClientName)

	if *verify {
		if err := snapshot.Verify(snap); err != nil {
			logger.Error("snapshot replay diverged", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("snapshot replay verified", slog.String("snapshot_id", snap.ID))
	}

	exp := exporter.New(*outDir)
	paths := make([]string, 0, 3)

	p, err := exp.WriteSnapshot(snap)
	if err != nil {
		logger.Error("failed to write snapshot", slog.String("error", err.Error()))
		os.Exit(1)
	}
	paths = append(paths, p)

	if p, err = exp.WriteDistributionCSV(snap.ID+"_retailers", snap.RetailerDistribution); err != nil {
		logger.Error("failed to write retailer distribution", slog.String("error", err.Error()))
		os.Exit(1)
	}
	paths = append(paths, p)

	if p, err = exp.WriteTimeSeriesCSV(snap.ID+"_series", snap.TimeSeries); err != nil {
		logger.Error("failed to write time series", slog.String("error", err.Error()))
		os.Exit(1)
	}
	paths = append(paths, p)

	logger.Info("snapshot exported",
		slog.String("snapshot_id", snap.ID),
		slog.Int("filtered", len(snap.FilteredData)),
		slog.Int("insights", len(snap.Insights)))
	for _, path := range paths {
		fmt.Println(path)
	}
}

func loadStore(path string) (*dataset.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.ReadCSV("cli", name, f)
	case ".xlsx":
		return dataset.ReadExcel("cli", name, f)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func buildFilters(raw map[string]filterConfig) analytics.FilterSpec {
	spec := make(analytics.FilterSpec, len(raw))
	for field, fc := range raw {
		spec[field] = analytics.Constraint{
			Kind:      analytics.ConstraintKind(fc.Kind),
			Values:    fc.Values,
			Min:       fc.Min,
			Max:       fc.Max,
			MinDate:   fc.MinDate,
			MaxDate:   fc.MaxDate,
			Substring: fc.Substring,
		}
	}
	return spec
}
