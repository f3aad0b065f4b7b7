// Package indexer drains the crawler's definition and reference
// streams and assembles them into an LSIF graph via an Emitter,
// maintaining the ids and per-definition bookkeeping in a datacache.
package indexer

import (
	"fmt"
	"sort"

	"github.com/alidn/universal-lsif/datacache"
	"github.com/alidn/universal-lsif/lsif"
	"github.com/alidn/universal-lsif/model"
)

// MonikerScheme identifies the source of the identifiers this tool
// indexes, distinguishing its monikers from ones another indexer for
// the same project might emit.
const MonikerScheme = "zas"

// Indexer assembles one LSIF dump from a single crawl.
type Indexer struct {
	Emitter     *lsif.Emitter
	Cache       *datacache.Cache
	ProjectRoot string
	LanguageID  string
	projectID   int64
}

// New returns an Indexer writing through emitter.
func New(emitter *lsif.Emitter, projectRoot, languageID string) *Indexer {
	return &Indexer{
		Emitter:     emitter,
		Cache:       datacache.New(),
		ProjectRoot: projectRoot,
		LanguageID:  languageID,
	}
}

// Start emits the metaData vertex and a document vertex for every file
// the crawl is going to visit. Every file gets a Document vertex even
// if no definitions or references are ultimately found in it — an
// invariant the datacache's Documents() relies on for its final
// contains-edge pass.
func (ix *Indexer) Start(fileURIs []string) error {
	metaDataID, err := ix.Emitter.MetaData(ix.ProjectRoot)
	if err != nil {
		return err
	}
	// The dump has no separate project vertex; metaData's own id also
	// serves as the project id that documents' contains edge points at.
	ix.projectID = metaDataID
	for _, uri := range fileURIs {
		id, err := ix.Emitter.Document(uri, ix.LanguageID)
		if err != nil {
			return err
		}
		ix.Cache.CacheDocument(uri, id)
	}
	return nil
}

// Run drains defs to completion before indexing any reference — the
// ordering guarantee the pipeline depends on, since a reference can
// only be classified against a definition the crawler has already
// discovered. The crawler sends definitions and references interleaved
// on unbuffered channels as it tokenizes each file, so refs must be
// drained into memory concurrently with the defs loop below; otherwise
// the crawler's first blocked `refs <-` send would never unblock until
// defs is fully drained, but defs never closes because the crawler
// itself is stuck on that same send — a permanent deadlock. Buffering
// refs here (rather than switching to an unbounded channel, which Go
// doesn't have) is the direct analogue of the original's unbounded
// std::sync::mpsc channel. Once both streams are exhausted, finalize()
// emits the referenceResult vertices and item/contains edges, and the
// emitter is flushed.
func (ix *Indexer) Run(defs <-chan model.Definition, refs <-chan model.Reference) error {
	var buffered []model.Reference
	refsDone := make(chan struct{})
	go func() {
		defer close(refsDone)
		for ref := range refs {
			buffered = append(buffered, ref)
		}
	}()

	for def := range defs {
		if err := ix.indexDefinition(def); err != nil {
			return fmt.Errorf("indexer: indexing definition %q: %w", def.NodeName, err)
		}
	}
	<-refsDone

	for _, ref := range buffered {
		if err := ix.indexReference(ref); err != nil {
			return fmt.Errorf("indexer: indexing reference %q: %w", ref.NodeName, err)
		}
	}
	if err := ix.finalize(); err != nil {
		return fmt.Errorf("indexer: finalizing: %w", err)
	}
	return ix.Emitter.End()
}

func (ix *Indexer) indexDefinition(def model.Definition) error {
	loc := def.Location
	documentID, ok := ix.Cache.GetDocumentID(loc.FileURI)
	if !ok {
		// The definition's file has no document vertex (it was not in
		// the set passed to Start), so the definition is dropped.
		return nil
	}

	if _, exists := ix.Cache.GetRangeID(loc); exists {
		// An earlier definition with the same start in this file already
		// cached the range (references are indexed only after every
		// definition, so none can have cached it); nothing new to emit.
		return nil
	}

	rangeID, err := ix.Emitter.Range(loc.Range.Start, loc.Range.End)
	if err != nil {
		return err
	}
	ix.Cache.CacheDefinitionRange(loc, rangeID)

	resultSetID, err := ix.Emitter.ResultSet()
	if err != nil {
		return err
	}
	if _, err := ix.Emitter.Next(rangeID, resultSetID); err != nil {
		return err
	}

	definitionResultID, err := ix.Emitter.DefinitionResult()
	if err != nil {
		return err
	}
	if _, err := ix.Emitter.TextDocumentDefinition(resultSetID, definitionResultID); err != nil {
		return err
	}
	if _, err := ix.Emitter.ItemDefinitionRanges(definitionResultID, []int64{rangeID}, documentID); err != nil {
		return err
	}

	if def.Comment != "" {
		hoverID, err := ix.Emitter.HoverResult(ix.LanguageID, def.Comment)
		if err != nil {
			return err
		}
		if _, err := ix.Emitter.TextDocumentHover(resultSetID, hoverID); err != nil {
			return err
		}
	}

	monikerID, err := ix.Emitter.Moniker(MonikerScheme, monikerIdentifier(loc, def.NodeName))
	if err != nil {
		return err
	}
	if _, err := ix.Emitter.MonikerEdge(resultSetID, monikerID); err != nil {
		return err
	}

	ix.Cache.CacheDefinition(loc, datacache.DefinitionInfo{
		FileURI:            loc.FileURI,
		RangeID:            rangeID,
		ResultSetID:        resultSetID,
		DefinitionResultID: definitionResultID,
	})
	return nil
}

func (ix *Indexer) indexReference(ref model.Reference) error {
	defInfo, ok := ix.Cache.DefinitionInfoFor(ref.Definition.Location)
	if !ok {
		// The definition this reference points at was never indexed
		// (e.g. it lies in a file the crawl never visited). Per the
		// classification rule, a reference with no indexed definition
		// carries a synthesized one, but with nothing to link to there
		// is no resultSet to attach this occurrence's range to, so the
		// reference is dropped rather than emitted as an orphan range.
		return nil
	}

	loc := ref.Location
	if _, ok := ix.Cache.GetDocumentID(loc.FileURI); !ok {
		id, err := ix.Emitter.Document(loc.FileURI, ix.LanguageID)
		if err != nil {
			return err
		}
		ix.Cache.CacheDocument(loc.FileURI, id)
	}

	rangeID, existed := ix.Cache.GetRangeID(loc)
	if !existed {
		id, err := ix.Emitter.Range(loc.Range.Start, loc.Range.End)
		if err != nil {
			return err
		}
		ix.Cache.CacheReferenceRange(loc, id)
		rangeID = id

		if _, err := ix.Emitter.Next(rangeID, defInfo.ResultSetID); err != nil {
			return err
		}
	}

	ix.Cache.AddReferenceToDefinition(ref.Definition.Location, datacache.ReferenceOccurrence{
		FileURI: loc.FileURI,
		RangeID: rangeID,
	})
	return nil
}

// finalize emits the referenceResult vertex and its item edges for
// every indexed definition, then the contains edges tying each
// document to its ranges and the project root to every document.
func (ix *Indexer) finalize() error {
	for _, defInfo := range ix.Cache.DefinitionInfos() {
		referenceResultID, err := ix.Emitter.ReferenceResult()
		if err != nil {
			return err
		}
		if _, err := ix.Emitter.TextDocumentReferences(defInfo.ResultSetID, referenceResultID); err != nil {
			return err
		}

		defDocumentID, ok := ix.Cache.GetDocumentID(defInfo.FileURI)
		if !ok {
			return fmt.Errorf("document %q missing from cache", defInfo.FileURI)
		}
		if _, err := ix.Emitter.ItemDefinitions(referenceResultID, []int64{defInfo.RangeID}, defDocumentID); err != nil {
			return err
		}

		byDocument := make(map[int64][]int64)
		for _, occ := range defInfo.References {
			docID, ok := ix.Cache.GetDocumentID(occ.FileURI)
			if !ok {
				continue
			}
			byDocument[docID] = append(byDocument[docID], occ.RangeID)
		}
		for _, docID := range sortedKeys(byDocument) {
			if _, err := ix.Emitter.ItemReferences(referenceResultID, byDocument[docID], docID); err != nil {
				return err
			}
		}
	}

	documentIDs := make([]int64, 0)
	for _, doc := range ix.Cache.Documents() {
		ranges := append(append([]int64{}, doc.DefinitionRangeIDs...), doc.ReferenceRangeIDs...)
		if _, err := ix.Emitter.Contains(doc.DocumentID, ranges); err != nil {
			return err
		}
		documentIDs = append(documentIDs, doc.DocumentID)
	}
	sort.Slice(documentIDs, func(i, j int) bool { return documentIDs[i] < documentIDs[j] })

	_, err := ix.Emitter.Contains(ix.projectID, documentIDs)
	return err
}

func sortedKeys(m map[int64][]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func monikerIdentifier(loc model.Location, nodeName string) string {
	return fmt.Sprintf("%s:%s", loc.FileName(), nodeName)
}
