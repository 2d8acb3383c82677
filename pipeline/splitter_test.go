package pipeline

import (
	"testing"

	"github.com/geosift/geosift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedRow(query string, success bool, proba float64) *core.EnrichedRecord {
	return &core.EnrichedRecord{Query: query, Success: success, PoiProba: proba}
}

func TestSplitter_Partition(t *testing.T) {
	s, err := NewSplitter(0.5)
	require.NoError(t, err)

	records := []*core.EnrichedRecord{
		enrichedRow("fail high", false, 0.9),
		enrichedRow("fail low", false, 0.1),
		enrichedRow("success low", true, 0.1),
		enrichedRow("success high", true, 0.9),
	}

	cohorts := s.Split(records)

	assert.Len(t, cohorts.Fail, 2)
	assert.Len(t, cohorts.Success, 2)

	require.Len(t, cohorts.FailPOI, 1)
	assert.Equal(t, "fail high", cohorts.FailPOI[0].Query)

	require.Len(t, cohorts.SuccessAddr, 1)
	assert.Equal(t, "success low", cohorts.SuccessAddr[0].Query)
}

func TestSplitter_StrictThresholdBoundaries(t *testing.T) {
	s, err := NewSplitter(0.4)
	require.NoError(t, err)

	records := []*core.EnrichedRecord{
		enrichedRow("at tau", false, 0.4),
		enrichedRow("at one minus tau", true, 0.6),
	}

	cohorts := s.Split(records)

	// Rows exactly at tau or 1-tau belong to neither thresholded cohort.
	assert.Empty(t, cohorts.FailPOI)
	assert.Empty(t, cohorts.SuccessAddr)
	assert.Len(t, cohorts.Fail, 1)
	assert.Len(t, cohorts.Success, 1)
}

func TestSplitter_ThresholdedCohortsAreDisjoint(t *testing.T) {
	s, err := NewSplitter(0.3)
	require.NoError(t, err)

	records := []*core.EnrichedRecord{
		enrichedRow("a", false, 0.95),
		enrichedRow("b", false, 0.05),
		enrichedRow("c", true, 0.95),
		enrichedRow("d", true, 0.05),
		enrichedRow("e", false, 0.5),
	}

	cohorts := s.Split(records)

	failPOI := make(map[*core.EnrichedRecord]bool)
	for _, rec := range cohorts.FailPOI {
		failPOI[rec] = true
	}
	for _, rec := range cohorts.SuccessAddr {
		assert.False(t, failPOI[rec], "fail_poi and success_addr must never overlap")
	}

	// Every row lands in exactly one of the outcome cohorts.
	assert.Equal(t, len(records), len(cohorts.Fail)+len(cohorts.Success))
}

func TestSplitter_DoesNotMutateRows(t *testing.T) {
	s, err := NewSplitter(0.5)
	require.NoError(t, err)

	rec := enrichedRow("query", false, 0.9)
	before := *rec
	s.Split([]*core.EnrichedRecord{rec})
	assert.Equal(t, before, *rec)
}

func TestNewSplitter_InvalidThreshold(t *testing.T) {
	_, err := NewSplitter(-0.1)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewSplitter(1.5)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
