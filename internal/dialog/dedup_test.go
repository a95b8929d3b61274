package dialog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentTrackerDedup(t *testing.T) {
	tr := newSentTracker(10)
	assert.True(t, tr.markSent("CA1"))
	assert.False(t, tr.markSent("CA1"))
	assert.True(t, tr.markSent("CA2"))
}

func TestSentTrackerEvictsOldest(t *testing.T) {
	tr := newSentTracker(3)
	for i := 0; i < 3; i++ {
		assert.True(t, tr.markSent(fmt.Sprintf("CA%d", i)))
	}

	// Capacity exceeded: CA0 falls out, newer entries stay tracked.
	assert.True(t, tr.markSent("CA3"))
	assert.False(t, tr.markSent("CA3"))
	assert.False(t, tr.markSent("CA1"))
	assert.True(t, tr.markSent("CA0"))
}
