package constants

import "strings"

// Input formats recorded on a run.
const (
	PDF  = "PDF"
	TEXT = "TXT"
)

// FileTypes holds the allowed values for the format column of a run.
var FileTypes = []string{PDF, TEXT}

// AllowedExtensions holds the default allowed file extensions for discovery and the inbox watcher.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF or TXT for a normalized extension, "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}

// WorkbookSuffix is appended to a document's base name to form its output file name.
const WorkbookSuffix = "_tabelas.xlsx"
