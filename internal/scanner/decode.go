package scanner

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/fingerprint"
	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
)

// DecodeError is a per-file failure. The file is left out of the run.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func buildRecord(path string, extractor fingerprint.Extractor) (*imgmatch.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("opening file: %w", err)}
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("getting file info: %w", err)}
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, &DecodeError{Path: path, Err: fingerprint.ErrEmptyImage}
	}

	fp, err := extractor.ExtractImage(img)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("fingerprinting %s image: %w", format, err)}
	}

	r := &imgmatch.Record{
		ID:          path,
		ByteSize:    info.Size(),
		PixelWidth:  bounds.Dx(),
		PixelHeight: bounds.Dy(),
		Fingerprint: fp,
	}
	if hasExif(path) {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			r.HorizontalResolution, r.VerticalResolution = readResolution(file)
		}
	}
	return r, nil
}

// readResolution returns the EXIF X and Y resolution, or zeros when the
// file carries none.
func readResolution(r io.Reader) (x, y float64) {
	meta, err := exif.Decode(r)
	if err != nil {
		logrus.Debugf("No EXIF data: %v", err)
		return 0, 0
	}
	return ratTag(meta, exif.XResolution), ratTag(meta, exif.YResolution)
}

func ratTag(meta *exif.Exif, name exif.FieldName) float64 {
	tag, err := meta.Get(name)
	if err != nil {
		return 0
	}
	rat, err := tag.Rat(0)
	if err != nil {
		return 0
	}
	v, _ := rat.Float64()
	return v
}

// LoadRecord decodes and fingerprints a single file.
func LoadRecord(path string, extractor fingerprint.Extractor) (*imgmatch.Record, error) {
	return buildRecord(path, extractor)
}
