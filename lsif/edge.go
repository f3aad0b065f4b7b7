package lsif

// Edge1to1 connects exactly one out-vertex to exactly one in-vertex:
// next, textDocument/definition, textDocument/references,
// textDocument/hover, and moniker all have this shape.
type Edge1to1 struct {
	Element
	OutV int64 `json:"outV"`
	InV  int64 `json:"inV"`
}

// Edge1toN connects one out-vertex to a set of in-vertices: contains
// edges. Item edges, scoped or not, use ItemEdge.
type Edge1toN struct {
	Element
	OutV int64   `json:"outV"`
	InVs []int64 `json:"inVs"`
}

// ItemEdge is the item edge's full shape: like Edge1toN, but also
// names the document the in-vertices belong to, and optionally a
// property ("definitions" or "references") distinguishing which half
// of a ReferenceResult's contents the in-vertices are.
type ItemEdge struct {
	Element
	OutV     int64   `json:"outV"`
	InVs     []int64 `json:"inVs"`
	Document int64   `json:"document"`
	Property string  `json:"property,omitempty"`
}

const (
	edgeNext                     = "next"
	edgeTextDocumentDefinition   = "textDocument/definition"
	edgeTextDocumentReferences   = "textDocument/references"
	edgeTextDocumentHover        = "textDocument/hover"
	edgeMoniker                  = "moniker"
	edgeContains                 = "contains"
	edgeItem                     = "item"
	itemPropertyDefinitions      = "definitions"
	itemPropertyReferences       = "references"
)
