package mtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStampModifiedIsMonotonic(t *testing.T) {
	var a, b Stamp
	assert.Zero(t, a.Time())

	a.Modified()
	b.Modified()
	assert.Greater(t, b.Time(), a.Time())
	assert.True(t, a.Older(b.Time()))
	assert.False(t, b.Older(a.Time()))

	a.Modified()
	assert.Greater(t, a.Time(), b.Time())
	assert.Equal(t, a.Time(), Now())
}

func TestZeroStampIsOlderThanAnyModification(t *testing.T) {
	var zero, s Stamp
	s.Modified()
	assert.True(t, zero.Older(s.Time()))
}
