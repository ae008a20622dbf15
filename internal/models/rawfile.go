package models

import (
	"path/filepath"
	"strings"
)

// RawFile is the ephemeral input to one parse call: the uploaded bytes plus
// what the transport layer declared about them. Never persisted.
type RawFile struct {
	Name    string
	Size    int64
	Content []byte
	// MediaType is the client-declared Content-Type, if any. Advisory only;
	// detection relies on extension and content signatures.
	MediaType string
}

// Ext returns the lowercased file extension including the dot, e.g. ".csv".
func (f *RawFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Prefix returns at most n bytes from the start of the content. Used by
// canParse probes so signature checks never read the whole file.
func (f *RawFile) Prefix(n int) []byte {
	if len(f.Content) <= n {
		return f.Content
	}
	return f.Content[:n]
}
