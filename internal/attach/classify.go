package attach

import "strings"

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// IsImageLike reports whether filename ends in a previewable image extension.
func IsImageLike(filename string) bool {
	fn := strings.ToLower(filename)
	for _, ext := range imageExts {
		if strings.HasSuffix(fn, ext) {
			return true
		}
	}
	return false
}
