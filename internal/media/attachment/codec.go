// Package attachment converts case documents and profile images between raw
// bytes and the base64 transport strings the API exchanges.
//
// Two transport shapes are accepted on decode:
//
//	data:<mime>;base64,<body>
//	<body>                      (mime supplied out of band)
//
// Encode always produces the first shape.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"legalease/internal/media/sniffer"
)

var ErrMalformed = errors.New("malformed attachment payload")

const (
	dataPrefix   = "data:"
	base64Marker = ";base64"
)

// Encode renders raw bytes as a self-describing data URL.
func Encode(raw []byte, mime string) string {
	mime = sniffer.NormalizeMime(mime)
	if mime == "" {
		mime = sniffer.OctetStream
	}
	return dataPrefix + mime + base64Marker + "," + base64.StdEncoding.EncodeToString(raw)
}

// Decode parses a transport string. A data URL's own mime wins; a bare body
// takes fallbackMime, then the sniffed type.
func Decode(transport string, fallbackMime string) ([]byte, string, error) {
	body := transport
	mime := sniffer.NormalizeMime(fallbackMime)

	if hasDataPrefix(transport) {
		header, payload, ok := strings.Cut(transport[len(dataPrefix):], ",")
		if !ok {
			return nil, "", fmt.Errorf("%w: missing data separator", ErrMalformed)
		}
		if !strings.HasSuffix(strings.ToLower(header), base64Marker) {
			return nil, "", fmt.Errorf("%w: only base64 data urls are supported", ErrMalformed)
		}
		if declared := sniffer.NormalizeMime(header[:len(header)-len(base64Marker)]); declared != "" {
			mime = declared
		}
		body = payload
	}

	raw, err := decodeBody(body)
	if err != nil {
		return nil, "", err
	}

	if mime == "" {
		mime = sniffer.DetectHead(raw).MIME
	}
	return raw, mime, nil
}

func hasDataPrefix(s string) bool {
	return len(s) >= len(dataPrefix) && strings.EqualFold(s[:len(dataPrefix)], dataPrefix)
}

// decodeBody tolerates whitespace, missing padding and the URL-safe alphabet.
func decodeBody(body string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, body)
	cleaned = strings.TrimRight(cleaned, "=")

	enc := base64.RawStdEncoding
	if strings.ContainsAny(cleaned, "-_") {
		enc = base64.RawURLEncoding
	}
	raw, err := enc.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}
