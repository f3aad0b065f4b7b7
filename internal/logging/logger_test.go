package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugGatingDefaultsOff(t *testing.T) {
	l := &Logger{}
	assert.False(t, l.IsDebugEnabled())
	l.SetDebugEnabled(true)
	assert.True(t, l.IsDebugEnabled())
}

func TestQuietGatingDefaultsOff(t *testing.T) {
	l := &Logger{}
	assert.False(t, l.IsQuietEnabled())
	l.SetQuietEnabled(true)
	assert.True(t, l.IsQuietEnabled())
}

func TestGlobalLoggerConvenienceFunctionsTrackState(t *testing.T) {
	defer SetDebugEnabled(false)
	defer SetQuietEnabled(false)

	SetDebugEnabled(true)
	assert.True(t, IsDebugEnabled())

	SetQuietEnabled(true)
	assert.True(t, IsQuietEnabled())
}
