package domain

import "strings"

// Audio is a single uploaded recording.
type Audio struct {
	Data     []byte
	MIMEType string
}

// IsAudioMIMEType reports whether a declared content type names an audio format.
func IsAudioMIMEType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/")
}

// BaseMIMEType strips parameters such as "; codecs=opus".
func BaseMIMEType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}
