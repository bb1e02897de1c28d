// Package ids generates the identifiers used for rows and sessions.
package ids

import "github.com/segmentio/ksuid"

// New returns a KSUID string. KSUIDs sort by creation time.
func New() string {
	return ksuid.New().String()
}

// Valid reports whether s parses as a KSUID.
func Valid(s string) bool {
	_, err := ksuid.Parse(s)
	return err == nil
}
