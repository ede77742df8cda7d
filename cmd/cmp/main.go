package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/scanner"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/similarity"
)

var (
	paths      = pflag.StringArrayP("files", "f", []string{"sample.jpg", "sample.jpg"}, "Paths of images to compare")
	strategy   = pflag.StringP("strategy", "s", string(fingerprint.Average), "Hash strategy {average|gradient|perception}")
	percentage = pflag.Float64("similarity_threshold", similarity.DefaultPercentageThreshold, "Minimum percentage of matching bits")
	hamming    = pflag.Int("hamming_threshold", similarity.DefaultHammingThreshold, "Hamming distance below which images match")
)

func main() {
	pflag.Parse()
	if len(*paths) != 2 {
		logrus.Fatalf("Pass 2 images to compare")
	}
	st, err := fingerprint.ParseStrategy(*strategy)
	if err != nil {
		logrus.Fatalf("Error parsing strategy: %v", err)
	}
	e, err := fingerprint.New(fingerprint.Options{Strategy: st})
	if err != nil {
		logrus.Fatalf("Error creating extractor: %v", err)
	}
	c, err := similarity.ForStrategy(st, *percentage, *hamming)
	if err != nil {
		logrus.Fatalf("Error creating comparator: %v", err)
	}

	first := load((*paths)[0], e)
	second := load((*paths)[1], e)
	logrus.Printf("Hash for first file is %s, second: %s", first.Hex(), second.Hex())

	score, err := c.Compare(first, second)
	if err != nil {
		logrus.Fatalf("Error calculating score: %v", err)
	}
	logrus.Printf("Score is %.2f, similar (%v): %v", float64(score), c, c.Similar(score))
}

func load(path string, e fingerprint.Extractor) fingerprint.Fingerprint {
	r, err := scanner.LoadRecord(path, e)
	if err != nil {
		logrus.Fatalf("Error calculating hash: %v", err)
	}
	return r.Fingerprint
}
