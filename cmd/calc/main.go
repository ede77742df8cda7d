package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/scanner"
)

var (
	path       = pflag.StringP("file", "f", "sample.jpg", "Path to image to hash")
	strategy   = pflag.StringP("strategy", "s", string(fingerprint.Average), "Hash strategy {average|gradient|perception}")
	gridWidth  = pflag.Int("grid_width", 0, "Hash grid width, 0 for the strategy default")
	gridHeight = pflag.Int("grid_height", 0, "Hash grid height, 0 for the strategy default")
)

func main() {
	pflag.Parse()
	st, err := fingerprint.ParseStrategy(*strategy)
	if err != nil {
		logrus.Fatalf("Error parsing strategy: %v", err)
	}
	e, err := fingerprint.New(fingerprint.Options{Strategy: st, GridWidth: *gridWidth, GridHeight: *gridHeight})
	if err != nil {
		logrus.Fatalf("Error creating extractor: %v", err)
	}

	r, err := scanner.LoadRecord(*path, e)
	if err != nil {
		logrus.Fatalf("Error calculating hash: %v", err)
	}

	logrus.Printf("Image is %dx%d, %d bytes, %vx%v dpi", r.PixelWidth, r.PixelHeight, r.ByteSize, r.HorizontalResolution, r.VerticalResolution)
	logrus.Printf("Hash (%d bits) is %s", r.Fingerprint.Len(), r.Fingerprint)
	logrus.Printf("Hex: %s", r.Fingerprint.Hex())
}
