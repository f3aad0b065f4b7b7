// Package crawler walks a project, tokenizes each file into candidate
// identifiers, and queries a language server per identifier to
// classify it as a self-definition or a reference to one.
package crawler

import (
	"errors"
	"fmt"

	"github.com/alidn/universal-lsif/internal/langconfig"
	"github.com/alidn/universal-lsif/internal/logging"
	"github.com/alidn/universal-lsif/internal/platform"
	"github.com/alidn/universal-lsif/model"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DefinitionClient is the subset of *lsp.Client the crawler needs. It
// is an interface so tests can drive the crawler against a scripted
// fake server instead of a real child process.
type DefinitionClient interface {
	DidOpen(path, text string) error
	GotoDefinition(path string, pos protocol.Position) (*protocol.Location, error)
}

// Progress is notified once per file as the crawl advances.
type Progress interface {
	Increment()
}

type noopProgress struct{}

func (noopProgress) Increment() {}

// Crawler drives a DefinitionClient over a project tree.
type Crawler struct {
	FS       platform.FileSystem
	Client   DefinitionClient
	Config   langconfig.Language
	Progress Progress
}

// Run tokenizes and queries every file in paths, and sends the
// resulting Definition/Reference events to defs/refs. Both channels are
// closed when the walk completes, signaling end-of-stream to whatever
// is draining them (normally the Indexer). Per-identifier query errors
// are logged and dropped; they do not abort the walk. A file read
// failure is likewise logged and that file is skipped. paths is
// normally the same list the caller already passed to Walk to compute
// the Document vertices the indexer needs up front.
func (c *Crawler) Run(paths []string, defs chan<- model.Definition, refs chan<- model.Reference) error {
	defer close(defs)
	defer close(refs)

	progress := c.Progress
	if progress == nil {
		progress = noopProgress{}
	}

	var softErrs error
	for _, path := range paths {
		if err := c.crawlFile(path, defs, refs); err != nil {
			softErrs = errors.Join(softErrs, err)
		}
		progress.Increment()
	}
	return softErrs
}

func (c *Crawler) crawlFile(path string, defs chan<- model.Definition, refs chan<- model.Reference) error {
	data, err := c.FS.ReadFile(path)
	if err != nil {
		logging.Debug("crawler: skipping %s: %v", path, err)
		return nil
	}
	text := string(data)

	if err := c.Client.DidOpen(path, text); err != nil {
		return fmt.Errorf("crawler: didOpen %s: %w", path, err)
	}

	fileURI := "file://" + path
	for _, tok := range Tokenize(text) {
		if c.Config.Keywords[tok.Word] {
			continue
		}

		loc, err := c.Client.GotoDefinition(path, tok.Range.Start)
		if err != nil {
			logging.Debug("crawler: goto-definition for %q in %s failed: %v", tok.Word, path, err)
			continue
		}
		if loc == nil {
			continue
		}

		queryLoc := model.Location{FileURI: fileURI, Range: tok.Range}
		defLoc := model.Location{FileURI: string(loc.URI), Range: loc.Range}

		if defLoc.Key() == queryLoc.Key() && defLoc.FileURI == queryLoc.FileURI {
			defs <- model.Definition{Location: queryLoc, NodeName: tok.Word}
			continue
		}

		refs <- model.Reference{
			Location: queryLoc,
			NodeName: tok.Word,
			Definition: model.Definition{
				Location: defLoc,
				NodeName: tok.Word,
			},
		}
	}
	return nil
}
