package compose

import "strings"

const (
	// FormatFlag is the output option whose argument selects the container format.
	FormatFlag = "-f"
	// DefaultFormat applies when an output carries no format selector.
	DefaultFormat = "mp4"
	// SequenceFormat writes one file per frame and needs a numbered pattern.
	SequenceFormat = "image2"
	// SequencePlaceholder is the zero-padded frame number in sequence patterns.
	SequencePlaceholder = "%03d"

	// fallbackExtension is used for formats missing from the table. ffmpeg may
	// still accept them; the extension is only a naming hint.
	fallbackExtension = "mp4"
)

var formatExtensions = map[string]string{
	"mp4":      "mp4",
	"mov":      "mov",
	"avi":      "avi",
	"mkv":      "mkv",
	"webm":     "webm",
	"gif":      "gif",
	"apng":     "apng",
	"jpg":      "jpg",
	"jpeg":     "jpg",
	"png":      "png",
	"image2":   "png",
	"rawvideo": "raw",
	"mp3":      "mp3",
	"wav":      "wav",
	"aac":      "aac",
	"flac":     "flac",
	"ogg":      "ogg",
}

// ExtensionFor maps a format identifier to a file extension, case-insensitively.
func ExtensionFor(format string) string {
	if ext, ok := formatExtensions[strings.ToLower(strings.TrimSpace(format))]; ok {
		return ext
	}
	return fallbackExtension
}

// IsSequence reports whether format is the image-sequence format.
func IsSequence(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), SequenceFormat)
}

// formatOf returns the argument of the first format selector in opts, or
// DefaultFormat when there is none or it has no argument.
func formatOf(opts []Option) string {
	for _, o := range opts {
		if o.Flag == FormatFlag {
			if o.Argument.IsSet() && o.Argument.Value() != "" {
				return o.Argument.Value()
			}
			break
		}
	}
	return DefaultFormat
}
