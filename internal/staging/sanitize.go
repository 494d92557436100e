package staging

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackName is used when nothing safe is left of the client filename.
const fallbackName = "upload"

var fold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize reduces filename to a name that is safe to create inside the staging
// directory: directory components and drive prefixes are dropped, accents are
// folded to ASCII, whitespace becomes "_", and any remaining character outside
// [A-Za-z0-9._-] is removed. Leading and trailing dots and underscores are
// trimmed. An empty result yields "upload".
func Sanitize(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if len(name) >= 2 && name[1] == ':' && isASCIILetter(name[0]) {
		name = name[2:]
	}
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r < unicode.MaxASCII && (isASCIILetter(byte(r)) || ('0' <= r && r <= '9') || r == '.' || r == '-' || r == '_'):
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), "._")
	if name == "" {
		return fallbackName
	}
	return name
}

// SanitizeKeepExt sanitizes filename and makes sure the result still carries
// the original final extension, so an upload whose stem was entirely unsafe
// ("../.png") keeps its type ("upload.png").
func SanitizeKeepExt(filename string) string {
	name := Sanitize(filename)
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return name
	}
	ext := Sanitize(strings.ToLower(filename[i+1:]))
	if ext == fallbackName && !strings.EqualFold(filename[i+1:], fallbackName) {
		return name
	}
	switch {
	case strings.EqualFold(name, ext):
		return fallbackName + "." + ext
	case strings.HasSuffix(strings.ToLower(name), "."+ext):
		return name
	default:
		return name + "." + ext
	}
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
