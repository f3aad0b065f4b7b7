package indexer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alidn/universal-lsif/lsif"
	"github.com/alidn/universal-lsif/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

func rng(startLine, startChar, endLine, endChar uint32) model.Range {
	return model.Range{Start: pos(startLine, startChar), End: pos(endLine, endChar)}
}

type element struct {
	ID         int64   `json:"id"`
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	OutV       *int64  `json:"outV"`
	InV        *int64  `json:"inV"`
	InVs       []int64 `json:"inVs"`
	Property   string  `json:"property"`
	Kind       string  `json:"kind"`
	Scheme     string  `json:"scheme"`
	Identifier string  `json:"identifier"`
	Result     *struct {
		Contents struct {
			Language    string `json:"language"`
			Value       string `json:"value"`
			IsRawString bool   `json:"isRawString"`
		} `json:"contents"`
	} `json:"result"`
}

func decode(t *testing.T, buf *bytes.Buffer) []element {
	t.Helper()
	var out []element
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var e element
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		out = append(out, e)
	}
	return out
}

func countLabels(elements []element, label string) int {
	n := 0
	for _, e := range elements {
		if e.Label == label {
			n++
		}
	}
	return n
}

func runIndexer(t *testing.T, fileURIs []string, defs []model.Definition, refs []model.Reference) []element {
	t.Helper()
	var buf bytes.Buffer
	emitter := lsif.NewEmitter(&buf)
	ix := New(emitter, "/project", "go")

	require.NoError(t, ix.Start(fileURIs))

	defCh := make(chan model.Definition, len(defs))
	refCh := make(chan model.Reference, len(refs))
	for _, d := range defs {
		defCh <- d
	}
	close(defCh)
	for _, r := range refs {
		refCh <- r
	}
	close(refCh)

	require.NoError(t, ix.Run(defCh, refCh))
	return decode(t, &buf)
}

func TestIndexerSingleDefinitionNoReferences(t *testing.T) {
	def := model.Definition{
		Location: model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)},
		NodeName: "foo",
	}
	elements := runIndexer(t, []string{"file:///a.go"}, []model.Definition{def}, nil)

	assert.Equal(t, 1, countLabels(elements, "metaData"))
	assert.Equal(t, 1, countLabels(elements, "document"))
	assert.Equal(t, 1, countLabels(elements, "range"))
	assert.Equal(t, 1, countLabels(elements, "resultSet"))
	assert.Equal(t, 1, countLabels(elements, "definitionResult"))
	assert.Equal(t, 1, countLabels(elements, "referenceResult"))
	assert.Equal(t, 1, countLabels(elements, "moniker"))
	assert.Equal(t, 0, countLabels(elements, "hoverResult"))
}

func TestIndexerDefinitionWithCommentEmitsHover(t *testing.T) {
	def := model.Definition{
		Location: model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)},
		NodeName: "foo",
		Comment:  "foo does a thing",
	}
	elements := runIndexer(t, []string{"file:///a.go"}, []model.Definition{def}, nil)
	assert.Equal(t, 1, countLabels(elements, "hoverResult"))
	assert.Equal(t, 1, countLabels(elements, "textDocument/hover"))

	for _, e := range elements {
		if e.Label != "hoverResult" {
			continue
		}
		require.NotNil(t, e.Result)
		assert.Equal(t, "go", e.Result.Contents.Language)
		assert.Equal(t, "foo does a thing", e.Result.Contents.Value)
		assert.True(t, e.Result.Contents.IsRawString)
	}
}

func TestIndexerMonikerUsesFileNameAndZasScheme(t *testing.T) {
	def := model.Definition{
		Location: model.Location{FileURI: "file:///path/to/a.go", Range: rng(1, 0, 1, 3)},
		NodeName: "foo",
	}
	elements := runIndexer(t, []string{"file:///path/to/a.go"}, []model.Definition{def}, nil)

	var monikers []element
	for _, e := range elements {
		if e.Label == "moniker" {
			monikers = append(monikers, e)
		}
	}
	require.Len(t, monikers, 1)
	assert.Equal(t, "local", monikers[0].Kind)
	assert.Equal(t, MonikerScheme, monikers[0].Scheme)
	assert.Equal(t, "a.go:foo", monikers[0].Identifier)
}

func TestIndexerReferenceInSameFile(t *testing.T) {
	defLoc := model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)}
	def := model.Definition{Location: defLoc, NodeName: "foo"}
	ref := model.Reference{
		Location:   model.Location{FileURI: "file:///a.go", Range: rng(5, 2, 5, 5)},
		NodeName:   "foo",
		Definition: def,
	}
	elements := runIndexer(t, []string{"file:///a.go"}, []model.Definition{def}, []model.Reference{ref})

	assert.Equal(t, 2, countLabels(elements, "range"))
	assert.Equal(t, 2, countLabels(elements, "next"))

	var itemEdges []element
	for _, e := range elements {
		if e.Label == "item" {
			itemEdges = append(itemEdges, e)
		}
	}
	// one from definitionResult (no property), two from referenceResult
	// (property "definitions" and "references")
	require.Len(t, itemEdges, 3)
	properties := make(map[string]bool)
	for _, e := range itemEdges {
		properties[e.Property] = true
	}
	assert.True(t, properties[""])
	assert.True(t, properties["definitions"])
	assert.True(t, properties["references"])
}

func TestIndexerReferenceAcrossFiles(t *testing.T) {
	defLoc := model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)}
	def := model.Definition{Location: defLoc, NodeName: "foo"}
	ref := model.Reference{
		Location:   model.Location{FileURI: "file:///b.go", Range: rng(2, 0, 2, 3)},
		NodeName:   "foo",
		Definition: def,
	}
	elements := runIndexer(t, []string{"file:///a.go", "file:///b.go"}, []model.Definition{def}, []model.Reference{ref})

	assert.Equal(t, 2, countLabels(elements, "document"))
	assert.Equal(t, 2, countLabels(elements, "range"))
}

func TestIndexerReferenceWithUnindexedDefinitionIsDropped(t *testing.T) {
	ref := model.Reference{
		Location: model.Location{FileURI: "file:///a.go", Range: rng(2, 0, 2, 3)},
		NodeName: "foo",
		Definition: model.Definition{
			Location: model.Location{FileURI: "file:///outside.go", Range: rng(0, 0, 0, 3)},
			NodeName: "foo",
		},
	}
	elements := runIndexer(t, []string{"file:///a.go"}, nil, []model.Reference{ref})

	assert.Equal(t, 0, countLabels(elements, "range"))
	assert.Equal(t, 0, countLabels(elements, "referenceResult"))
}

func TestIndexerContainsEdgesFormTree(t *testing.T) {
	def := model.Definition{
		Location: model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)},
		NodeName: "foo",
	}
	elements := runIndexer(t, []string{"file:///a.go"}, []model.Definition{def}, nil)

	var containsEdges []element
	for _, e := range elements {
		if e.Label == "contains" {
			containsEdges = append(containsEdges, e)
		}
	}
	// one contains edge for document->ranges, one for project(metaData)->documents
	require.Len(t, containsEdges, 2)

	byID := make(map[int64]element)
	for _, e := range elements {
		byID[e.ID] = e
	}
	for _, edge := range containsEdges {
		for _, inV := range edge.InVs {
			target, ok := byID[inV]
			require.True(t, ok)
			assert.Less(t, target.ID, edge.ID, "contains targets must precede the edge")
		}
	}
}

// TestIndexerRunDoesNotDeadlockOnUnbufferedInterleavedChannels reproduces
// the shape of the real pipeline: a producer goroutine (standing in for
// the crawler) sends definitions and references interleaved on unbuffered
// channels, exactly as crawler.Crawler.Run does per token. Run must drain
// both streams without the producer ever blocking forever on a `refs <-`
// send while Run is still waiting to finish draining defs.
func TestIndexerRunDoesNotDeadlockOnUnbufferedInterleavedChannels(t *testing.T) {
	defLoc := model.Location{FileURI: "file:///a.go", Range: rng(1, 0, 1, 3)}
	def := model.Definition{Location: defLoc, NodeName: "foo"}
	ref := model.Reference{
		Location:   model.Location{FileURI: "file:///a.go", Range: rng(5, 0, 5, 3)},
		NodeName:   "foo",
		Definition: def,
	}

	defs := make(chan model.Definition) // unbuffered, like the orchestrator's
	refs := make(chan model.Reference)  // unbuffered, like the orchestrator's

	go func() {
		defer close(defs)
		defer close(refs)
		// Interleaved sends, definition first then its reference, the
		// same order a real crawl would discover them in within one file.
		defs <- def
		refs <- ref
	}()

	var buf bytes.Buffer
	emitter := lsif.NewEmitter(&buf)
	ix := New(emitter, "/project", "go")
	require.NoError(t, ix.Start([]string{"file:///a.go"}))

	done := make(chan error, 1)
	go func() { done <- ix.Run(defs, refs) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Indexer.Run deadlocked draining interleaved defs/refs")
	}

	elements := decode(t, &buf)
	assert.Equal(t, 2, countLabels(elements, "range"))
	assert.Equal(t, 1, countLabels(elements, "referenceResult"))
}
