package constants

import "strings"

// PDF is the only source format the blueprint pipeline accepts.
const PDF = "PDF"

// ContentTypePDF is the MIME type stored with blueprint sources.
const ContentTypePDF = "application/pdf"

// AllowedExtensions holds the file extensions accepted for blueprint sources.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for ext, or "" when unsupported.
func MapExtToFormat(ext string) string {
	if _, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return PDF
	}
	return ""
}
