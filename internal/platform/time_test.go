package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealTimeProviderNowAdvances(t *testing.T) {
	p := NewRealTimeProvider()
	before := p.Now()
	p.Sleep(time.Millisecond)
	after := p.Now()
	assert.True(t, after.After(before) || after.Equal(before))
}

func TestRealTimeProviderAfterFires(t *testing.T) {
	p := NewRealTimeProvider()
	select {
	case <-p.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("After channel never fired")
	}
}
