package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBatch(t *testing.T) {
	valid, skipped := NormalizeBatch([]Lead{
		{Name: "Sam Carter", Phone: "(555) 123-4567"},
		{Name: "Dupe Carter", Phone: "+15551234567"},
		{Name: "No Phone"},
		{Name: "Riley Jones", FirstName: "Ri", Phone: "5559876543", Context: "asked about listings"},
	})

	require.Len(t, valid, 2)
	assert.Equal(t, 2, skipped)

	assert.Equal(t, "+15551234567", valid[0].Phone)
	assert.Equal(t, "Sam", valid[0].FirstName, "first name derived from full name")

	assert.Equal(t, "+15559876543", valid[1].Phone)
	assert.Equal(t, "Ri", valid[1].FirstName, "explicit first name preserved")
	assert.Equal(t, "asked about listings", valid[1].Context)
}

func TestNormalizeBatchEmpty(t *testing.T) {
	valid, skipped := NormalizeBatch(nil)
	assert.Empty(t, valid)
	assert.Zero(t, skipped)
}
