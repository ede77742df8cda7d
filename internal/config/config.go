package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/similarity"
)

type Config struct {
	LogLevel            string  `mapstructure:"log_level"`
	Root                string  `mapstructure:"root"`
	Output              string  `mapstructure:"output"`
	Strategy            string  `mapstructure:"strategy"`
	GridWidth           int     `mapstructure:"grid_width"`
	GridHeight          int     `mapstructure:"grid_height"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	HammingThreshold    int     `mapstructure:"hamming_threshold"`
	Workers             int     `mapstructure:"workers"`
	Ignore              string  `mapstructure:"ignore"`
	Report              string  `mapstructure:"report"`
	DryRun              bool    `mapstructure:"dry_run"`
	KeepBest            bool    `mapstructure:"keep_best"`
	Progress            bool    `mapstructure:"progress"`
}

func Get() *Config {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logrus.Fatalf("Error unmarshalling config: %v", err)
	}
	logrus.Debugf("Got config: %+v", cfg)
	return &cfg
}

// Validate checks the settings that the scan and clustering depend on.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root directory is required")
	}
	strategy, err := fingerprint.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}
	if c.GridWidth < 0 || c.GridHeight < 0 {
		return fmt.Errorf("grid %dx%d must not be negative", c.GridWidth, c.GridHeight)
	}
	if strategy == fingerprint.Gradient && c.GridWidth == 1 {
		return errors.New("gradient hash needs a grid at least 2 pixels wide")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity threshold %v is outside [0, 100]", c.SimilarityThreshold)
	}
	if c.HammingThreshold < 0 {
		return fmt.Errorf("hamming threshold %d is negative", c.HammingThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d is negative", c.Workers)
	}
	return nil
}

func (c *Config) ExtractorOptions() fingerprint.Options {
	strategy, _ := fingerprint.ParseStrategy(c.Strategy)
	return fingerprint.Options{Strategy: strategy, GridWidth: c.GridWidth, GridHeight: c.GridHeight}
}

func (c *Config) Comparator() (similarity.Comparator, error) {
	strategy, err := fingerprint.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	return similarity.ForStrategy(strategy, c.SimilarityThreshold, c.HammingThreshold)
}
