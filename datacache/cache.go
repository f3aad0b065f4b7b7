// Package datacache holds the state the indexer accumulates as it
// drains the crawler's definition and reference streams: which LSIF
// document/range vertices have already been emitted, and per-definition
// bookkeeping needed to emit ReferenceResult/item edges once every
// reference has been seen.
package datacache

import "github.com/alidn/universal-lsif/model"

// DocumentInfo tracks the LSIF ids emitted for one source file: the
// document vertex itself, and the range ids that belong to it, split
// by whether the range is a definition's own range or a reference's
// range. The two lists are disjoint and insertion-ordered, matching the
// order ranges were first seen.
type DocumentInfo struct {
	DocumentID         int64
	DefinitionRangeIDs []int64
	ReferenceRangeIDs  []int64
}

// ReferenceOccurrence is one reference range resolving to a definition,
// together with the document it was found in — item edges are scoped
// per-document, so the indexer needs both to group them at finalization.
type ReferenceOccurrence struct {
	FileURI string
	RangeID int64
}

// DefinitionInfo tracks everything the indexer needs to remember about
// one definition once its defining occurrence has been emitted: its own
// file/range/resultSet/definitionResult ids, and every reference that
// resolves to it (filled in as references are drained).
type DefinitionInfo struct {
	FileURI            string
	RangeID            int64
	ResultSetID        int64
	DefinitionResultID int64
	References         []ReferenceOccurrence
}

// Cache is the Indexer's working state.
type Cache struct {
	documents map[string]*DocumentInfo
	ranges    map[string]map[model.StartKey]int64
	defInfos  map[model.LocationKey]*DefinitionInfo
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		documents: make(map[string]*DocumentInfo),
		ranges:    make(map[string]map[model.StartKey]int64),
		defInfos:  make(map[model.LocationKey]*DefinitionInfo),
	}
}

// CacheDocument records that fileURI was emitted as the document with
// the given id. It is a no-op if fileURI is already cached — every
// document is registered exactly once, normally by the indexer's
// startup pass (a reference in a file outside that set registers its
// document when it is indexed).
func (c *Cache) CacheDocument(fileURI string, documentID int64) {
	if _, ok := c.documents[fileURI]; ok {
		return
	}
	c.documents[fileURI] = &DocumentInfo{DocumentID: documentID}
	c.ranges[fileURI] = make(map[model.StartKey]int64)
}

// GetDocumentID returns the document id for fileURI and whether it was
// found.
func (c *Cache) GetDocumentID(fileURI string) (int64, bool) {
	doc, ok := c.documents[fileURI]
	if !ok {
		return 0, false
	}
	return doc.DocumentID, true
}

// GetRangeID returns the range id previously cached for loc, if any.
// Ranges are deduplicated by (file, start) only, per the data model's
// Range equality rule.
func (c *Cache) GetRangeID(loc model.Location) (int64, bool) {
	byStart, ok := c.ranges[loc.FileURI]
	if !ok {
		return 0, false
	}
	id, ok := byStart[model.KeyOf(loc.Range)]
	return id, ok
}

// CacheDefinitionRange records a newly emitted range id as belonging to
// a definition's own occurrence in loc.FileURI.
func (c *Cache) CacheDefinitionRange(loc model.Location, rangeID int64) {
	c.cacheRange(loc, rangeID)
	doc := c.documents[loc.FileURI]
	doc.DefinitionRangeIDs = append(doc.DefinitionRangeIDs, rangeID)
}

// CacheReferenceRange records a newly emitted range id as belonging to
// a reference's occurrence in loc.FileURI.
func (c *Cache) CacheReferenceRange(loc model.Location, rangeID int64) {
	c.cacheRange(loc, rangeID)
	doc := c.documents[loc.FileURI]
	doc.ReferenceRangeIDs = append(doc.ReferenceRangeIDs, rangeID)
}

func (c *Cache) cacheRange(loc model.Location, rangeID int64) {
	c.ranges[loc.FileURI][model.KeyOf(loc.Range)] = rangeID
}

// CacheDefinition registers the ids assigned when a Definition's range,
// resultSet, and definitionResult vertices were emitted, keyed by the
// definition's location.
func (c *Cache) CacheDefinition(loc model.Location, info DefinitionInfo) {
	c.defInfos[loc.Key()] = &info
}

// DefinitionInfoFor returns the cached bookkeeping for a definition at
// loc, if one has been indexed.
func (c *Cache) DefinitionInfoFor(loc model.Location) (*DefinitionInfo, bool) {
	info, ok := c.defInfos[loc.Key()]
	return info, ok
}

// AddReferenceToDefinition appends a reference occurrence to the
// definition at defLoc. defLoc must already be cached via
// CacheDefinition.
func (c *Cache) AddReferenceToDefinition(defLoc model.Location, occ ReferenceOccurrence) {
	info := c.defInfos[defLoc.Key()]
	info.References = append(info.References, occ)
}

// Documents returns every cached document, keyed by file URI. Iteration
// order over a Go map is not stable, so callers that need a fixed order
// should sort by DocumentInfo.DocumentID or by URI.
func (c *Cache) Documents() map[string]*DocumentInfo {
	return c.documents
}

// DefinitionInfos returns every cached DefinitionInfo, keyed by the
// definition's location key.
func (c *Cache) DefinitionInfos() map[model.LocationKey]*DefinitionInfo {
	return c.defInfos
}
