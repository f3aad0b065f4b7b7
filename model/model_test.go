package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func rangeAt(startLine, startChar, endLine, endChar uint32) Range {
	return Range{
		Start: protocol.Position{Line: protocol.UInteger(startLine), Character: protocol.UInteger(startChar)},
		End:   protocol.Position{Line: protocol.UInteger(endLine), Character: protocol.UInteger(endChar)},
	}
}

func TestKeyOfIgnoresEnd(t *testing.T) {
	a := rangeAt(3, 5, 3, 9)
	b := rangeAt(3, 5, 3, 999)
	assert.Equal(t, KeyOf(a), KeyOf(b), "ranges with the same start must collapse to the same key regardless of end")
}

func TestKeyOfDistinguishesStart(t *testing.T) {
	a := rangeAt(3, 5, 3, 9)
	b := rangeAt(3, 6, 3, 9)
	assert.NotEqual(t, KeyOf(a), KeyOf(b))
}

func TestLocationKeyIncludesFile(t *testing.T) {
	r := rangeAt(1, 1, 1, 2)
	a := Location{FileURI: "file:///a.go", Range: r}
	b := Location{FileURI: "file:///b.go", Range: r}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestLocationFileName(t *testing.T) {
	loc := Location{FileURI: "file:///project/pkg/file.go"}
	assert.Equal(t, "file.go", loc.FileName())
}
