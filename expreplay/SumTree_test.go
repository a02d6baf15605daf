package expreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumTreeTotal(t *testing.T) {
	tree := newSumTree(4)
	tree.set(0, 1)
	tree.set(1, 2)
	tree.set(2, 3)
	tree.set(3, 4)

	assert.Equal(t, 10.0, tree.total())

	// Overwriting a slot adjusts the total
	tree.set(1, 5)
	assert.Equal(t, 13.0, tree.total())
	assert.Equal(t, 5.0, tree.get(1))
}

func TestSumTreeFind(t *testing.T) {
	tree := newSumTree(4)
	tree.set(0, 1)
	tree.set(1, 2)
	tree.set(2, 3)
	tree.set(3, 4)

	// Cumulative intervals: [0,1) [1,3) [3,6) [6,10)
	assert.Equal(t, 0, tree.find(0.0))
	assert.Equal(t, 0, tree.find(0.99))
	assert.Equal(t, 1, tree.find(1.0))
	assert.Equal(t, 1, tree.find(2.99))
	assert.Equal(t, 2, tree.find(3.0))
	assert.Equal(t, 2, tree.find(5.99))
	assert.Equal(t, 3, tree.find(6.0))
	assert.Equal(t, 3, tree.find(9.99))
}

func TestSumTreeFindSkipsZeroMass(t *testing.T) {
	tree := newSumTree(4)
	tree.set(2, 1)

	// All mass sits at slot 2
	assert.Equal(t, 2, tree.find(0.0))
	assert.Equal(t, 2, tree.find(0.99))
}
