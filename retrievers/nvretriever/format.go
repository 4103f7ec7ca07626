package nvretriever

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const defaultFormat = "txt"

// binaryFormats are sent base64 encoded; anything else is sent as text.
var binaryFormats = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"ppt":  true,
	"pptx": true,
	"xls":  true,
	"xlsx": true,
	"odt":  true,
	"rtf":  true,
}

// documentFormat derives the format tag from the file extension.
func documentFormat(path string) (format string, binary bool) {
	format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return defaultFormat, false
	}
	return format, binaryFormats[format]
}

// encodeContent returns the payload content. Text must be valid UTF-8, since
// JSON encoding would replace invalid bytes and the service would store
// something other than the file.
func encodeContent(data []byte, binary bool) (string, error) {
	if binary {
		return base64.StdEncoding.EncodeToString(data), nil
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	return string(data), nil
}
