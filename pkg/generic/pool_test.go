package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset, 2)

	b := p.Get()
	b.WriteString("frame")
	p.Put(b)
	assert.Zero(t, b.Len())

	assert.NotNil(t, p.Get())
}

func TestPoolWithoutReset(t *testing.T) {
	calls := 0
	p := NewPool(func() int { calls++; return 7 }, nil)
	assert.Equal(t, 7, p.Get())
	p.Put(3)
	assert.Positive(t, calls)
}
