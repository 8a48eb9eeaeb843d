package constants

import "strings"

// File formats accepted by the document text extractor.
const (
	PDF   = "PDF"
	DOCX  = "DOCX"
	IMAGE = "IMAGE"
)

// rosterExtensions are the upload types accepted for student roster import.
var rosterExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
}

// attendanceExtensions additionally allow images (attendance sheets are
// often photographed registers).
var attendanceExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"gif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a (normalized or raw) extension to a format constant.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "jpg", "jpeg", "png", "webp", "gif":
		return IMAGE
	default:
		return ""
	}
}

// AllowedForRoster reports whether the extension is accepted for roster import.
func AllowedForRoster(ext string) bool {
	_, ok := rosterExtensions[NormalizeExt(ext)]
	return ok
}

// AllowedForAttendance reports whether the extension is accepted for
// attendance import.
func AllowedForAttendance(ext string) bool {
	_, ok := attendanceExtensions[NormalizeExt(ext)]
	return ok
}

// ImageMIMEType returns the MIME type for a supported image extension.
func ImageMIMEType(ext string) string {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
