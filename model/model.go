// Package model holds the data types shared by the crawler, the data
// cache, and the indexer: positions, ranges, locations, and the two
// event kinds the crawler discovers while walking a project.
package model

import (
	"path/filepath"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Position is a (line, character) pair in UTF-16 code units, 0-based.
type Position = protocol.Position

// Range is a half-open [start, end) span of Positions.
type Range = protocol.Range

// StartKey identifies a Range by its start position only. Two ranges
// that share a start collapse to one entry wherever StartKey is used as
// a map key — this is the dedup-by-start-only behavior the data model
// requires, expressed as ordinary Go struct equality instead of a
// hand-rolled hash function.
type StartKey struct {
	Line      protocol.UInteger
	Character protocol.UInteger
}

// KeyOf returns the dedup key for r.
func KeyOf(r Range) StartKey {
	return StartKey{Line: r.Start.Line, Character: r.Start.Character}
}

// Location globally identifies a syntactic occurrence: a file and a
// range within it.
type Location struct {
	FileURI string
	Range   Range
}

// LocationKey is the map key used to look up DefinitionInfo by Location.
// Because Range equality is start-only, the key only carries the file
// and the range's start.
type LocationKey struct {
	FileURI string
	Start   StartKey
}

// Key returns the lookup key for l.
func (l Location) Key() LocationKey {
	return LocationKey{FileURI: l.FileURI, Start: KeyOf(l.Range)}
}

// FileName returns the final path component of the location's file URI.
func (l Location) FileName() string {
	return filepath.Base(l.FileURI)
}

// Definition is an identifier whose resolved definition is itself.
type Definition struct {
	Location Location
	NodeName string
	Comment  string // empty means "no comment"
}

// Reference is an identifier whose resolved definition lies elsewhere.
type Reference struct {
	Location   Location
	NodeName   string
	Definition Definition
}
