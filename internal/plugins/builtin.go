// Package plugins supplies the recognizers and handlers filedock starts with,
// and installs the ones declared in filedock.yml.
package plugins

import (
	"bytes"
	"mime"

	"github.com/dyluth/filedock/internal/filetype"
	"github.com/dyluth/filedock/internal/handler"
	"github.com/gabriel-vasile/mimetype"
)

// SniffID is the ID of the catch-all content sniffer.
const SniffID = "sniff"

func magic(id, mimeType string, offset int, sig string, before ...string) filetype.Recognizer {
	return filetype.Recognizer{
		ID:         id,
		Before:     before,
		Identifier: filetype.Magic{MIME: mimeType, Offset: offset, Signature: []byte(sig)},
	}
}

// Recognizers returns the built-in recognizers in registration order.
func Recognizers() []filetype.Recognizer {
	return []filetype.Recognizer{
		magic("png", "image/png", 0, "\x89PNG\r\n\x1a\n"),
		magic("jpeg", "image/jpeg", 0, "\xff\xd8\xff"),
		magic("gif87", "image/gif", 0, "GIF87a"),
		magic("gif89", "image/gif", 0, "GIF89a"),
		magic("pdf", "application/pdf", 0, "%PDF-"),
		magic("gzip", "application/gzip", 0, "\x1f\x8b"),
		magic("elf", "application/x-executable", 0, "\x7fELF"),
		magic("tar", "application/x-tar", 257, "ustar"),
		// Office documents are zip archives; leave them to the sniffer.
		{
			ID:         "zip",
			After:      []string{SniffID},
			Identifier: filetype.Magic{MIME: "application/zip", Signature: []byte("PK\x03\x04")},
		},
		{ID: "xml", Identifier: filetype.IdentifyFunc(identifyXML)},
		{ID: "shebang", Identifier: filetype.IdentifyFunc(identifyShebang)},
		{ID: SniffID, Wildcard: true, Identifier: filetype.IdentifyFunc(sniff)},
	}
}

func identifyXML(s filetype.Sample) string {
	trimmed := bytes.TrimLeft(s, "\xef\xbb\xbf \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return "application/xml"
	}
	return ""
}

var interpreters = map[string]string{
	"python":  "text/x-python",
	"python3": "text/x-python",
	"perl":    "text/x-perl",
	"ruby":    "text/x-ruby",
	"sh":      "text/x-shellscript",
	"bash":    "text/x-shellscript",
	"zsh":     "text/x-shellscript",
	"node":    "text/javascript",
}

// identifyShebang maps "#!/usr/bin/env python" style first lines to a script type.
func identifyShebang(s filetype.Sample) string {
	if !s.HasPrefix([]byte("#!")) {
		return ""
	}
	line := s[2:]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	prog := fields[0]
	if i := bytes.LastIndexByte(prog, '/'); i >= 0 {
		prog = prog[i+1:]
	}
	if string(prog) == "env" && len(fields) > 1 {
		prog = fields[1]
	}
	if m, ok := interpreters[string(prog)]; ok {
		return m
	}
	return "text/x-script"
}

// sniff defers to the mimetype signature tree. Its generic answer for unknown
// binary content is a decline so the default applies.
func sniff(s filetype.Sample) string {
	detected := mimetype.Detect(s)
	base, _, err := mime.ParseMediaType(detected.String())
	if err != nil || base == filetype.DefaultMIME {
		return ""
	}
	return base
}

// Handlers returns the built-in handler descriptors in priority order.
func Handlers() []handler.Descriptor {
	return []handler.Descriptor{
		{ID: "image", Name: "Image Viewer", CanEdit: handler.MatchMIME("image/*")},
		{ID: "text", Name: "Text Editor", CanEdit: handler.MatchMIME("text/*", "application/xml", "application/json", "application/javascript")},
		{ID: "hex", Name: "Hex Editor", CanEdit: handler.MatchMIME("application/*")},
	}
}
