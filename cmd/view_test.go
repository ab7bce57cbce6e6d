package main

import (
	"testing"

	"github.com/richinsley/gomoebius/graphics"
	"github.com/stretchr/testify/assert"
)

func TestMouseDrag(t *testing.T) {
	var d mouseDrag

	dx, dy := d.update(graphics.Pointer{X: 10, Y: 10})
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	// first pressed frame only records the position
	dx, dy = d.update(graphics.Pointer{X: 10, Y: 10, Down: true})
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	dx, dy = d.update(graphics.Pointer{X: 15, Y: 7, Down: true})
	assert.Equal(t, 5.0, dx)
	assert.Equal(t, -3.0, dy)

	d.update(graphics.Pointer{X: 15, Y: 7})
	assert.False(t, d.active)
}
