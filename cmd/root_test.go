package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLangsFlagAnywhereInArgv(t *testing.T) {
	assert.True(t, hasLangsFlag([]string{"--langs"}))
	assert.True(t, hasLangsFlag([]string{"gopls", "go", "--langs"}))
	assert.True(t, hasLangsFlag([]string{"--debug", "--langs", "gopls"}))
	assert.False(t, hasLangsFlag([]string{"gopls", "go", "."}))
	assert.False(t, hasLangsFlag(nil))
}
