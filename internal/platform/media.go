package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// DefaultMaxMediaSize is the fallback media size ceiling (50 MiB).
const DefaultMaxMediaSize = 50 * 1024 * 1024

var allowedMediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
}

// MediaValidator checks media references before any network call is made:
// extension allow-list, size ceiling, and a magic-byte sniff so a renamed
// file cannot slip through.
type MediaValidator struct {
	MaxFileSize int64
}

func NewMediaValidator(maxFileSize int64) MediaValidator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxMediaSize
	}
	return MediaValidator{MaxFileSize: maxFileSize}
}

func (v MediaValidator) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("media file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("media reference %s is a directory", path)
	}
	if info.Size() > v.MaxFileSize {
		return fmt.Errorf("media file %s exceeds size limit (%d > %d bytes)", path, info.Size(), v.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !allowedMediaExtensions[ext] {
		return fmt.Errorf("media extension %q not allowed", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("media file not readable: %w", err)
	}
	defer f.Close()

	// filetype needs at most the first 262 bytes
	head := make([]byte, 262)
	n, _ := f.Read(head)
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return fmt.Errorf("media type detection failed: %w", err)
	}
	if !filetype.IsImage(head[:n]) && !filetype.IsVideo(head[:n]) {
		return fmt.Errorf("media file %s is not an image or video (detected %s)", path, kind.MIME.Value)
	}

	return nil
}
