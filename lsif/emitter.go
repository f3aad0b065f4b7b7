package lsif

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alidn/universal-lsif/model"
)

// toolName and toolVersion populate every dump's metaData.toolInfo.
const (
	toolName    = "universal-lsif"
	toolVersion = "0.1"
)

// Emitter assigns ids and serializes the LSIF graph as newline-delimited
// JSON. It is not safe for concurrent use — the indexer is its only
// writer, and drains definitions then references sequentially.
type Emitter struct {
	w      *bufio.Writer
	nextID int64
}

// NewEmitter wraps w. The caller owns w's lifetime; Emitter only
// flushes it, it never closes it.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w), nextID: 1}
}

// emit assigns the next id to v, writes it as one ndjson line, and
// returns the assigned id.
func (e *Emitter) emit(typ, label string, v withElement) (int64, error) {
	id := e.nextID
	e.nextID++
	v.setElement(id, typ, label)

	line, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("lsif: encoding %s %s: %w", typ, label, err)
	}
	if _, err := e.w.Write(line); err != nil {
		return 0, fmt.Errorf("lsif: writing %s %s: %w", typ, label, err)
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return 0, fmt.Errorf("lsif: writing %s %s: %w", typ, label, err)
	}
	return id, nil
}

func (e *Emitter) vertex(label string, v withElement) (int64, error) {
	return e.emit("vertex", label, v)
}

func (e *Emitter) edge(label string, v withElement) (int64, error) {
	return e.emit("edge", label, v)
}

// MetaData emits the dump's opening vertex.
func (e *Emitter) MetaData(projectRoot string) (int64, error) {
	return e.vertex("metaData", &MetaData{
		Version:          "0.1",
		ProjectRoot:      directoryURI(projectRoot),
		PositionEncoding: "utf-16",
		ToolInfo:         ToolInfo{Name: toolName, Version: toolVersion},
	})
}

// directoryURI renders an absolute filesystem path as the file://
// directory URI metaData.projectRoot requires, adding the trailing
// slash that distinguishes a directory URI from a file URI.
func directoryURI(path string) string {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return "file://" + path
}

// Document emits a document vertex for one source file.
func (e *Emitter) Document(uri, languageID string) (int64, error) {
	return e.vertex("document", &Document{URI: uri, LanguageID: languageID})
}

// Range emits a range vertex.
func (e *Emitter) Range(start, end model.Position) (int64, error) {
	return e.vertex("range", &RangeVertex{Start: start, End: end})
}

// ResultSet emits a resultSet vertex.
func (e *Emitter) ResultSet() (int64, error) {
	return e.vertex("resultSet", &ResultSet{})
}

// DefinitionResult emits a definitionResult vertex.
func (e *Emitter) DefinitionResult() (int64, error) {
	return e.vertex("definitionResult", &DefinitionResult{})
}

// ReferenceResult emits a referenceResult vertex.
func (e *Emitter) ReferenceResult() (int64, error) {
	return e.vertex("referenceResult", &ReferenceResult{})
}

// HoverResult emits a hoverResult vertex carrying a raw documentation
// comment, tagged with the language it was written in.
func (e *Emitter) HoverResult(language, comment string) (int64, error) {
	hr := &HoverResult{}
	hr.Result.Contents = MarkedString{Language: language, Value: comment, IsRawString: true}
	return e.vertex("hoverResult", hr)
}

// Moniker emits a moniker vertex. Every moniker emitted here is local to
// this dump — cross-project linking is out of scope, so kind is always
// "local".
func (e *Emitter) Moniker(scheme, identifier string) (int64, error) {
	return e.vertex("moniker", &Moniker{Kind: "local", Scheme: scheme, Identifier: identifier})
}

// Next emits a next edge from outV (typically a range) to inV
// (typically a resultSet).
func (e *Emitter) Next(outV, inV int64) (int64, error) {
	return e.edge(edgeNext, &Edge1to1{OutV: outV, InV: inV})
}

// TextDocumentDefinition emits a textDocument/definition edge.
func (e *Emitter) TextDocumentDefinition(outV, inV int64) (int64, error) {
	return e.edge(edgeTextDocumentDefinition, &Edge1to1{OutV: outV, InV: inV})
}

// TextDocumentReferences emits a textDocument/references edge.
func (e *Emitter) TextDocumentReferences(outV, inV int64) (int64, error) {
	return e.edge(edgeTextDocumentReferences, &Edge1to1{OutV: outV, InV: inV})
}

// TextDocumentHover emits a textDocument/hover edge.
func (e *Emitter) TextDocumentHover(outV, inV int64) (int64, error) {
	return e.edge(edgeTextDocumentHover, &Edge1to1{OutV: outV, InV: inV})
}

// MonikerEdge emits a moniker edge.
func (e *Emitter) MonikerEdge(outV, inV int64) (int64, error) {
	return e.edge(edgeMoniker, &Edge1to1{OutV: outV, InV: inV})
}

// Contains emits a contains edge from outV to every id in inVs. A call
// with an empty inVs is skipped (an empty document has nothing to
// contain, and LSIF consumers don't expect contains edges with no
// targets).
func (e *Emitter) Contains(outV int64, inVs []int64) (int64, error) {
	if len(inVs) == 0 {
		return 0, nil
	}
	return e.edge(edgeContains, &Edge1toN{OutV: outV, InVs: inVs})
}

// ItemDefinitionRanges emits the item edge from a definitionResult to
// its own defining range(s). No property is set: a definitionResult's
// contents are definitions by construction.
func (e *Emitter) ItemDefinitionRanges(outV int64, inVs []int64, document int64) (int64, error) {
	if len(inVs) == 0 {
		return 0, nil
	}
	return e.edge(edgeItem, &ItemEdge{OutV: outV, InVs: inVs, Document: document})
}

// ItemDefinitions emits an item edge scoped to a referenceResult's
// "definitions" property: the range(s) where the identifier is defined.
func (e *Emitter) ItemDefinitions(outV int64, inVs []int64, document int64) (int64, error) {
	if len(inVs) == 0 {
		return 0, nil
	}
	return e.edge(edgeItem, &ItemEdge{OutV: outV, InVs: inVs, Document: document, Property: itemPropertyDefinitions})
}

// ItemReferences emits an item edge scoped to a referenceResult's
// reference ranges.
func (e *Emitter) ItemReferences(outV int64, inVs []int64, document int64) (int64, error) {
	if len(inVs) == 0 {
		return 0, nil
	}
	return e.edge(edgeItem, &ItemEdge{OutV: outV, InVs: inVs, Document: document, Property: itemPropertyReferences})
}

// End flushes any buffered output. Call it once, after every vertex
// and edge has been emitted.
func (e *Emitter) End() error {
	return e.w.Flush()
}
