package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSet_AddOncePerID(t *testing.T) {
	s := newSeenSet(10)
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("b"))
}

func TestSeenSet_EvictsOldestAtCapacity(t *testing.T) {
	s := newSeenSet(3)
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("c"))

	// "a" is the oldest and gets evicted.
	assert.True(t, s.Add("d"))
	assert.True(t, s.Add("a"))

	// "b" fell out when "a" was re-added.
	assert.False(t, s.Add("d"))
}

func TestSeenSet_DefaultCapacity(t *testing.T) {
	s := newSeenSet(0)
	for i := 0; i < defaultSeenCapacity; i++ {
		assert.True(t, s.Add(fmt.Sprintf("id-%d", i)))
	}
	assert.False(t, s.Add("id-0"))
	assert.True(t, s.Add("overflow"))
	// id-0 was the oldest entry.
	assert.True(t, s.Add("id-0"))
}
