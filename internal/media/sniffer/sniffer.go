package sniffer

import (
	"bytes"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypePDF     MediaType = "pdf"
	TypeZIP     MediaType = "zip"
	TypeJPEG    MediaType = "jpeg"
	TypePNG     MediaType = "png"
	TypeGIF     MediaType = "gif"
	TypeWEBP    MediaType = "webp"
	TypeSVG     MediaType = "svg"
	TypeUnknown MediaType = ""
)

const OctetStream = "application/octet-stream"

type Result struct {
	Type MediaType
	MIME string
}

func (r Result) Known() bool { return r.Type != TypeUnknown }

func (r Result) Image() bool {
	switch r.Type {
	case TypeJPEG, TypePNG, TypeGIF, TypeWEBP, TypeSVG:
		return true
	}
	return false
}

// DetectHead classifies a payload by its leading bytes. Unrecognised input
// yields an unknown result typed as application/octet-stream.
func DetectHead(head []byte) Result {
	switch {
	case isPDF(head):
		return Result{Type: TypePDF, MIME: "application/pdf"}
	case isZIP(head):
		// docx/xlsx are zip containers; callers keep a declared OOXML mime.
		return Result{Type: TypeZIP, MIME: "application/zip"}
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}
	}
	return Result{Type: TypeUnknown, MIME: OctetStream}
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isZIP(head []byte) bool {
	return bytes.HasPrefix(head, []byte("PK\x03\x04"))
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isSVG(head []byte) bool {
	n := len(head)
	if n > 512 {
		n = 512
	}
	trimmed := strings.ToLower(strings.TrimSpace(string(head[:n])))
	return strings.HasPrefix(trimmed, "<svg") ||
		(strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg"))
}

// NormalizeMime strips parameters and lowercases a Content-Type style value.
func NormalizeMime(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func MimeTypeFromHTTP(header http.Header) string {
	return NormalizeMime(header.Get("Content-Type"))
}
