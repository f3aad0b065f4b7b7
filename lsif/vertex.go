// Package lsif assembles and serializes an LSIF dump: a stream of
// vertex and edge objects, each one JSON-encoded on its own line.
package lsif

import "github.com/alidn/universal-lsif/model"

// Element is the envelope every vertex and edge carries: a dump-unique
// id, the graph element kind ("vertex" or "edge"), and the specific
// label within that kind. Every concrete vertex/edge struct embeds
// Element by value; Go's JSON encoder promotes its fields into the
// embedding struct's own object, so the wire shape has no nesting.
type Element struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

func (e *Element) setElement(id int64, typ, label string) {
	e.ID, e.Type, e.Label = id, typ, label
}

// withElement is satisfied by any *vertex or *edge struct, since all of
// them embed Element by value and so promote its pointer-receiver
// method. Emitter uses it to assign an id generically.
type withElement interface {
	setElement(id int64, typ, label string)
}

// ToolInfo identifies the program that produced a dump.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MetaData is the dump's single opening vertex: format version,
// project root, and the position encoding every range in the dump
// uses.
type MetaData struct {
	Element
	Version          string   `json:"version"`
	ProjectRoot      string   `json:"projectRoot"`
	PositionEncoding string   `json:"positionEncoding"`
	ToolInfo         ToolInfo `json:"toolInfo"`
}

// Document is one indexed source file.
type Document struct {
	Element
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
}

// RangeVertex is one syntactic occurrence of an identifier.
type RangeVertex struct {
	Element
	Start model.Position `json:"start"`
	End   model.Position `json:"end"`
}

// ResultSet groups a definition's range with its results (definition
// location, references, hover, moniker) behind one indirection, so
// every reference's range need only point at the resultSet instead of
// duplicating those edges.
type ResultSet struct {
	Element
}

// DefinitionResult points at the range(s) that define an identifier.
type DefinitionResult struct {
	Element
}

// ReferenceResult points at every range that refers to an identifier,
// including its own definition.
type ReferenceResult struct {
	Element
}

// MarkedString is a single marked string entry in a hover result's
// contents, carrying the language the comment was written in alongside
// its raw (unrendered) text.
type MarkedString struct {
	Language    string `json:"language"`
	Value       string `json:"value"`
	IsRawString bool   `json:"isRawString"`
}

// HoverResult carries the raw documentation comment for a definition,
// when one was available.
type HoverResult struct {
	Element
	Result struct {
		Contents MarkedString `json:"contents"`
	} `json:"result"`
}

// Moniker names an identifier with a scheme-qualified, project-unique
// identifier, so dumps from separate indexing runs could in principle
// be linked (cross-project linking itself is out of scope here — only
// the vertex shape is emitted).
type Moniker struct {
	Element
	Kind       string `json:"kind"`
	Scheme     string `json:"scheme"`
	Identifier string `json:"identifier"`
}
