package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

	b := p.Get()
	b.WriteString("frame")
	p.Put(b)
	assert.Zero(t, b.Len())

	assert.NotNil(t, p.Get())
}
