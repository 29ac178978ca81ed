package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestReport_MergeAndErr tests aggregation of per-file results
func TestReport_MergeAndErr(t *testing.T) {
	r := NewReport(RunInsert)
	assert.NoError(t, r.Err())

	other := NewReport(RunInsert)
	other.Processed = []string{"a.xml"}
	other.Placements = 2
	other.Fail("b.xml", &EncodingError{EntryID: 3, Tag: "Nope"})

	r.Merge(other)
	r.Merge(nil)
	r.Skipped = append(r.Skipped, "c.xml")

	assert.Equal(t, []string{"a.xml"}, r.Processed)
	assert.Equal(t, 2, r.Placements)

	err := r.Err()
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "b.xml: entry 3")

	var ee *EncodingError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.EntryID)
}
