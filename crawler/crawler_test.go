package crawler

import (
	"testing"

	"github.com/alidn/universal-lsif/internal/langconfig"
	"github.com/alidn/universal-lsif/internal/platform"
	"github.com/alidn/universal-lsif/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// fakeClient resolves every identifier in a file to a fixed answer,
// scripted by the test, so classification can be exercised without a
// real server.
type fakeClient struct {
	didOpen   []string
	answers   map[string]*protocol.Location // file path -> definition location
}

func (f *fakeClient) DidOpen(path, text string) error {
	f.didOpen = append(f.didOpen, path)
	return nil
}

func (f *fakeClient) GotoDefinition(path string, pos protocol.Position) (*protocol.Location, error) {
	return f.answers[path], nil
}

func TestCrawlerClassifiesSelfAsDefinition(t *testing.T) {
	fsys := platform.NewMapFS(map[string]string{"p/a.go": "foo"})
	client := &fakeClient{answers: map[string]*protocol.Location{
		"p/a.go": {
			URI:   "file://p/a.go",
			Range: protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 3}},
		},
	}}

	c := &Crawler{FS: fsys, Client: client, Config: langconfig.Language{Extensions: []string{"*.go"}}}

	defs := make(chan model.Definition, 10)
	refs := make(chan model.Reference, 10)
	require.NoError(t, c.Run([]string{"p/a.go"}, defs, refs))

	assert.Len(t, defs, 1)
	assert.Len(t, refs, 0)
}

func TestCrawlerClassifiesElsewhereAsReference(t *testing.T) {
	fsys := platform.NewMapFS(map[string]string{"p/a.go": "foo"})
	client := &fakeClient{answers: map[string]*protocol.Location{
		"p/a.go": {
			URI:   "file://p/other.go",
			Range: protocol.Range{Start: protocol.Position{Line: 9, Character: 0}, End: protocol.Position{Line: 9, Character: 3}},
		},
	}}

	c := &Crawler{FS: fsys, Client: client, Config: langconfig.Language{Extensions: []string{"*.go"}}}

	defs := make(chan model.Definition, 10)
	refs := make(chan model.Reference, 10)
	require.NoError(t, c.Run([]string{"p/a.go"}, defs, refs))

	assert.Len(t, defs, 0)
	require.Len(t, refs, 1)
	assert.Equal(t, "file://p/other.go", (<-refs).Definition.Location.FileURI)
}

func TestCrawlerSkipsKeywords(t *testing.T) {
	fsys := platform.NewMapFS(map[string]string{"p/a.go": "return"})
	client := &fakeClient{answers: map[string]*protocol.Location{}}

	c := &Crawler{
		FS:     fsys,
		Client: client,
		Config: langconfig.Language{Extensions: []string{"*.go"}, Keywords: map[string]bool{"return": true}},
	}

	defs := make(chan model.Definition, 10)
	refs := make(chan model.Reference, 10)
	require.NoError(t, c.Run([]string{"p/a.go"}, defs, refs))

	assert.Len(t, defs, 0)
	assert.Len(t, refs, 0)
}

func TestCrawlerDropsNilDefinitionResponse(t *testing.T) {
	fsys := platform.NewMapFS(map[string]string{"p/a.go": "foo"})
	client := &fakeClient{answers: map[string]*protocol.Location{"p/a.go": nil}}

	c := &Crawler{FS: fsys, Client: client, Config: langconfig.Language{Extensions: []string{"*.go"}}}

	defs := make(chan model.Definition, 10)
	refs := make(chan model.Reference, 10)
	require.NoError(t, c.Run([]string{"p/a.go"}, defs, refs))

	assert.Len(t, defs, 0)
	assert.Len(t, refs, 0)
}
