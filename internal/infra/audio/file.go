package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stockvoice/internal/domain"
)

var extensionMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// MIMETypeForPath maps a recording's extension to its audio content type.
func MIMETypeForPath(path string) (string, bool) {
	mimeType, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]
	return mimeType, ok
}

// LoadFile reads a recorded audio file from disk.
func LoadFile(path string) (domain.Audio, error) {
	mimeType, ok := MIMETypeForPath(path)
	if !ok {
		return domain.Audio{}, fmt.Errorf("unsupported audio file %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Audio{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	if len(data) == 0 {
		return domain.Audio{}, fmt.Errorf("audio file %s is empty", path)
	}

	return domain.Audio{Data: data, MIMEType: mimeType}, nil
}
