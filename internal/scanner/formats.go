package scanner

import (
	"path/filepath"
	"strings"

	// Decoders for every supported extension.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var supportedExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Formats carrying EXIF resolution tags that goexif can read.
var exifExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".tif":  {},
	".tiff": {},
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// IsSupported reports whether path has an extension the scanner decodes.
func IsSupported(path string) bool {
	_, ok := supportedExtensions[extension(path)]
	return ok
}

func hasExif(path string) bool {
	_, ok := exifExtensions[extension(path)]
	return ok
}
