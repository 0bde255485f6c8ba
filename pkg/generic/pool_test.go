package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolGeneratesAndResets(t *testing.T) {
	made := 0
	p := NewPool(func() *bytes.Buffer {
		made++
		return new(bytes.Buffer)
	}).WithReset(func(b *bytes.Buffer) { b.Reset() })

	b := p.Get()
	assert.Equal(t, 1, made)
	b.WriteString("frame")
	p.Put(b)
	assert.Zero(t, b.Len())
}

func TestHotPoolIsPrefilled(t *testing.T) {
	made := 0
	p := NewHotPool(func() int {
		made++
		return 7
	}, 3)
	assert.Equal(t, 3, made)
	assert.Equal(t, 7, p.Get())
}
