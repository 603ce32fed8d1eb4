package filetype

import "bytes"

// DefaultMIME is the classification of a non-empty sample that no recognizer
// claims.
const DefaultMIME = "application/octet-stream"

// Sample is the bounded content prefix of a resource.
type Sample []byte

// HasPrefix reports whether the sample starts with sig.
func (s Sample) HasPrefix(sig []byte) bool {
	return bytes.HasPrefix(s, sig)
}

// At reports whether sig occurs at offset.
func (s Sample) At(offset int, sig []byte) bool {
	if offset < 0 || offset+len(sig) > len(s) {
		return false
	}
	return bytes.Equal(s[offset:offset+len(sig)], sig)
}

// Classification is the result of classifying one resource: either a MIME type
// or the explicit unclassified state, used when no sample could be taken
// because the resource is empty. The zero value is Unclassified.
type Classification struct {
	mime string
}

// Unclassified is the classification of a resource with no content to sniff.
// It is deliberately distinct from DefaultMIME.
var Unclassified = Classification{}

// Classified returns the classification for mime. An empty mime yields
// Unclassified.
func Classified(mime string) Classification {
	return Classification{mime: mime}
}

// MIME returns the MIME type, or "" when unclassified.
func (c Classification) MIME() string {
	return c.mime
}

// IsClassified reports whether a MIME type was determined.
func (c Classification) IsClassified() bool {
	return c.mime != ""
}

func (c Classification) String() string {
	if c.mime == "" {
		return "unclassified"
	}
	return c.mime
}
