package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/config"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/ignorelist"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/relocate"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/report"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/scanner"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/similarity"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/storage"
)

func main() {
	cfg := setupConfig()
	initLogger()
	setLogLevel(cfg)
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("Invalid configuration: %v", err)
		pflag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		<-c
		logrus.Warn("Interrupted, finishing files in progress")
		cancel()
	}()

	started := time.Now()
	e := createExtractor(cfg)
	cmp := createComparator(cfg)
	l := createIgnoreList(cfg)
	s := scanner.New(e, cfg.Workers, l)

	listing, err := s.Walk(cfg.Root)
	if err != nil {
		logrus.Fatalf("Error listing images: %v", err)
	}
	logrus.Infof("Found %d images, %d other files", len(listing.Candidates), len(listing.Unsupported))
	for _, path := range listing.Unsupported {
		logrus.WithField("path", path).Debug("Unsupported file")
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.Default(int64(len(listing.Candidates)), "Hashing images")
		s.OnProgress = func(int64) { _ = bar.Add(1) }
	}
	res := s.Scan(ctx, listing)
	if bar != nil {
		_ = bar.Finish()
	}
	logrus.Infof("Fingerprinted %d images, %d unreadable", len(res.Records), len(res.Failures))

	partition, err := imgmatch.Cluster(res.Records, cmp)
	if err != nil {
		if errors.Is(err, similarity.ErrLengthMismatch) {
			logrus.Fatalf("Fingerprints of different lengths in one run: %v", err)
		}
		logrus.Fatalf("Error clustering images: %v", err)
	}
	if partition.Insufficient() {
		logrus.Infof("Fewer than two readable images, nothing to compare")
	}
	report.Log(partition)

	entries := partition.Entries()
	if cfg.KeepBest {
		entries = partition.KeeperEntries()
	}
	runID := ""
	if cfg.Output != "" && len(partition.Clusters()) > 0 && ctx.Err() == nil {
		runID = relocateClusters(ctx, cfg, entries, started)
	}

	if cfg.Report != "" {
		meta := report.Meta{
			RunID:       runID,
			Root:        cfg.Root,
			Strategy:    string(e.Strategy()),
			Metric:      fmt.Sprint(cmp),
			Started:     started,
			Failures:    len(res.Failures),
			Unsupported: len(res.Unsupported),
		}
		if err := report.WritePDF(cfg.Report, partition, meta); err != nil {
			logrus.Errorf("Error writing report: %v", err)
		} else {
			logrus.Infof("Report written to %s", cfg.Report)
		}
	}

	logrus.Infof("Done in %v", time.Since(started).Round(time.Millisecond))
}

func setupConfig() *config.Config {
	pflag.String("log_level", "INFO", "Log level {INFO|DEBUG|WARNING|ERROR}")
	pflag.StringP("root", "r", "", "Directory to scan for images")
	pflag.StringP("output", "o", "", "Directory receiving one folder per group of similar images")
	pflag.StringP("strategy", "s", string(fingerprint.Average), "Hash strategy {average|gradient|perception}")
	pflag.Int("grid_width", 0, "Hash grid width, 0 for the strategy default")
	pflag.Int("grid_height", 0, "Hash grid height, 0 for the strategy default")
	pflag.Float64("similarity_threshold", similarity.DefaultPercentageThreshold, "Minimum percentage of matching bits (average strategy)")
	pflag.Int("hamming_threshold", similarity.DefaultHammingThreshold, "Hamming distance below which images match (gradient and perception strategies)")
	pflag.IntP("workers", "w", 0, "Concurrent workers, 0 for the number of CPUs")
	pflag.String("ignore", "", "File with path patterns to skip, one per line")
	pflag.String("report", "", "Path of the PDF report to write")
	pflag.Bool("dry_run", false, "Only log the moves that would be made")
	pflag.Bool("keep_best", false, "Keep the largest, highest resolution image of each group")
	pflag.Bool("progress", true, "Show a progress bar while hashing")
	pflag.StringP("config", "c", "", "Optional config file")

	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		logrus.Fatalf("Error binding flags: %v", err)
	}

	viper.SetEnvPrefix("IMGDEDUP")
	viper.AutomaticEnv()
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			logrus.Fatalf("Error reading config file: %v", err)
		}
	}
	return config.Get()
}

func initLogger() {
	mainFormatter := &logrus.TextFormatter{}
	mainFormatter.FullTimestamp = true
	mainFormatter.ForceColors = true
	mainFormatter.PadLevelText = true
	mainFormatter.TimestampFormat = "2006-01-02 15:04:05"
	logrus.SetFormatter(mainFormatter)
}

func setLogLevel(cfg *config.Config) {
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		logrus.SetLevel(logrus.DebugLevel)
	case "INFO":
		logrus.SetLevel(logrus.InfoLevel)
	case "WARNING":
		logrus.SetLevel(logrus.WarnLevel)
	case "ERROR":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.Errorf("Invalid log level provided: %s", cfg.LogLevel)
		pflag.PrintDefaults()
		os.Exit(1)
	}
}

func createExtractor(cfg *config.Config) fingerprint.Extractor {
	e, err := fingerprint.New(cfg.ExtractorOptions())
	if err != nil {
		logrus.Fatalf("Error creating fingerprint extractor: %v", err)
	}
	logrus.Debugf("Using %s hash with %d bits", e.Strategy(), e.Bits())
	return e
}

func createComparator(cfg *config.Config) similarity.Comparator {
	c, err := cfg.Comparator()
	if err != nil {
		logrus.Fatalf("Error creating comparator: %v", err)
	}
	return c
}

func createIgnoreList(cfg *config.Config) *ignorelist.IgnoreList {
	l, err := ignorelist.New(cfg.Ignore)
	if err != nil {
		logrus.Fatalf("Error creating ignore list: %v", err)
	}
	return l
}

func createStorage(cfg *config.Config) *storage.Storage {
	s, err := storage.New(cfg.Output)
	if err != nil {
		logrus.Fatalf("Error creating storage: %v", err)
	}
	return s
}

func relocateClusters(ctx context.Context, cfg *config.Config, entries []imgmatch.Entry, started time.Time) string {
	var journal relocate.Journal
	runID := ""
	if !cfg.DryRun {
		s := createStorage(cfg)
		defer func() {
			if err := s.Close(); err != nil {
				logrus.Errorf("Error closing storage: %v", err)
			}
		}()
		run, err := s.BeginRun(cfg.Root, started)
		if err != nil {
			logrus.Fatalf("Error starting run journal: %v", err)
		}
		journal, runID = run, run.ID
	}

	m := relocate.New(cfg.Output, cfg.Workers, cfg.DryRun, journal)
	sum, err := m.Relocate(ctx, entries)
	if err != nil {
		logrus.Errorf("Error relocating images: %v", err)
		return runID
	}
	logger := logrus.WithField("run", runID)
	logger.Infof("Moved %d of %d files into %d groups (%d failed, %d skipped)",
		sum.Moved, sum.Planned, sum.Clusters, sum.Failed, sum.Skipped)
	if runID != "" {
		logger.Infof("Undo with: restore --output %s --run %s", cfg.Output, runID)
	}
	return runID
}
