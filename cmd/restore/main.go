package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/relocate"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/storage"
)

var (
	output = pflag.StringP("output", "o", "", "Output directory of the run to undo")
	runID  = pflag.String("run", "", "Run to undo, empty to list runs")
)

func main() {
	pflag.Parse()
	if *output == "" {
		logrus.Fatalf("Pass the output directory of a previous run")
	}

	s, err := storage.New(*output)
	if err != nil {
		logrus.Fatalf("Error opening storage: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logrus.Errorf("Error closing storage: %v", err)
		}
	}()

	if *runID == "" {
		runs, err := s.Runs()
		if err != nil {
			logrus.Fatalf("Error listing runs: %v", err)
		}
		for _, r := range runs {
			logrus.Printf("%s  %s  %s  %d moves", r.ID, r.Started.Format("2006-01-02 15:04:05"), r.Root, r.Moves)
		}
		return
	}

	moves, err := s.Moves(*runID)
	if err != nil {
		logrus.Fatalf("Error reading run %s: %v", *runID, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sum, err := relocate.Restore(ctx, moves, func(m storage.Move) error {
		return s.Forget(*runID, m)
	})
	if err != nil {
		logrus.Errorf("Error restoring: %v", err)
	}
	if sum != nil {
		logrus.Infof("Restored %d of %d files (%d failed)", sum.Moved, sum.Planned, sum.Failed)
	}
}
