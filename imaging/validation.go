package imaging

import (
	"path/filepath"
	"strings"
)

// OutputExtension is the canonical extension for processed images. Output is
// always PNG so exact pixel values and the alpha channel survive encoding.
const OutputExtension = ".png"

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tiff"}

// IsImageFile checks if the given file extension is one of the supported image extensions
func IsImageFile(path string) bool {
	ext := filepath.Ext(path)
	ext = strings.ToLower(ext) // handle cases where extension is upper case

	for _, v := range supportedExtensions {
		if v == ext {
			return true
		}
	}
	return false
}

// SupportedExtensions returns the input extensions the scanner accepts
func SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// OutputName returns the output filename for an input image: same base name
// with the extension replaced by the canonical PNG extension. Two inputs
// that differ only in extension map to the same output name; the last write
// wins.
func OutputName(inputName string) string {
	ext := filepath.Ext(inputName)
	return inputName[:len(inputName)-len(ext)] + OutputExtension
}
