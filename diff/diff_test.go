package diff_test

import (
	"testing"

	"github.com/barreldb/barrel/diff"
	"github.com/barreldb/barrel/models"
	"github.com/stretchr/testify/assert"
)

// TestSummarizeBucketPartition verifies `Summarize` places every accession of
// either record set in exactly one bucket.
func TestSummarizeBucketPartition(t *testing.T) {
	assert := assert.New(t)

	previous := []models.SequenceRecord{
		{AccessionNumber: "AB000001", VersionTag: "AB000001.1", DNASequence: "ACGT"},
		{AccessionNumber: "AB000002", VersionTag: "AB000002.1", DNASequence: "ACGT"},
		{AccessionNumber: "AB000003", VersionTag: "AB000003.1", DNASequence: "ACGT", Organism: "Danio rerio"},
		{AccessionNumber: "AB000004", VersionTag: "AB000004.1", DNASequence: "ACGT"},
	}
	current := []models.SequenceRecord{
		// Unchanged
		{AccessionNumber: "AB000001", VersionTag: "AB000001.1", DNASequence: "ACGT"},
		// New revision at the registry
		{AccessionNumber: "AB000002", VersionTag: "AB000002.2", DNASequence: "ACGT"},
		// Same revision, corrected metadata
		{AccessionNumber: "AB000003", VersionTag: "AB000003.1", DNASequence: "ACGT", Organism: "Danio kyathit"},
		// AB000004 dropped, AB000005 added
		{AccessionNumber: "AB000005", VersionTag: "AB000005.1", DNASequence: "TTTT"},
	}

	summary := diff.Summarize(previous, current)
	assert.Equal([]string{"AB000005"}, summary.Added)
	assert.Equal([]string{"AB000004"}, summary.Deleted)
	assert.Equal([]string{"AB000002"}, summary.VersionChanged)
	assert.Equal([]string{"AB000003"}, summary.MetadataChanged)
	assert.Equal([]string{"AB000001"}, summary.Unchanged)

	total := len(summary.Added) + len(summary.Deleted) + len(summary.VersionChanged) +
		len(summary.MetadataChanged) + len(summary.Unchanged)
	assert.Equal(5, total)
}

// TestSummarizeSequenceChangeDominatesMetadata verifies a record with both a
// sequence change and a metadata change lands in the version bucket only.
func TestSummarizeSequenceChangeDominatesMetadata(t *testing.T) {
	assert := assert.New(t)

	previous := []models.SequenceRecord{
		{AccessionNumber: "AB000001", VersionTag: "AB000001.1", DNASequence: "ACGT", Country: "Japan"},
	}
	current := []models.SequenceRecord{
		{AccessionNumber: "AB000001", VersionTag: "AB000001.1", DNASequence: "ACGA", Country: "Brazil"},
	}

	summary := diff.Summarize(previous, current)
	assert.Equal([]string{"AB000001"}, summary.VersionChanged)
	assert.Empty(summary.MetadataChanged)
	assert.Empty(summary.Unchanged)
}

// TestSummarizeEmptySets verifies `Summarize` against empty inputs.
func TestSummarizeEmptySets(t *testing.T) {
	assert := assert.New(t)

	summary := diff.Summarize(nil, nil)
	assert.False(summary.HasContentChange())
	assert.False(summary.HasMetadataChange())

	only := []models.SequenceRecord{
		{AccessionNumber: "AB000001", VersionTag: "AB000001.1", DNASequence: "ACGT"},
	}
	summary = diff.Summarize(nil, only)
	assert.Equal([]string{"AB000001"}, summary.Added)
	assert.True(summary.HasContentChange())

	summary = diff.Summarize(only, nil)
	assert.Equal([]string{"AB000001"}, summary.Deleted)
	assert.True(summary.HasContentChange())
}

// TestVersionLadder verifies the precedence ladder of `NextVersion`.
func TestVersionLadder(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.0.0", diff.FirstVersion().String())

	previous := diff.Version{Genbank: 2, Major: 3, Minor: 1}

	// Content change resets the lower components
	next := diff.NextVersion(previous, diff.UpdateSummary{Added: []string{"AB000001"}})
	assert.Equal("3.0.0", next.String())
	next = diff.NextVersion(previous, diff.UpdateSummary{Deleted: []string{"AB000001"}})
	assert.Equal("3.0.0", next.String())
	next = diff.NextVersion(previous, diff.UpdateSummary{VersionChanged: []string{"AB000001"}})
	assert.Equal("3.0.0", next.String())

	// Content change dominates a simultaneous metadata change
	next = diff.NextVersion(previous, diff.UpdateSummary{
		Added: []string{"AB000001"}, MetadataChanged: []string{"AB000002"},
	})
	assert.Equal("3.0.0", next.String())

	// Metadata-only change
	next = diff.NextVersion(previous, diff.UpdateSummary{MetadataChanged: []string{"AB000001"}})
	assert.Equal("2.4.0", next.String())

	// Identical republishing
	next = diff.NextVersion(previous, diff.UpdateSummary{Unchanged: []string{"AB000001"}})
	assert.Equal("2.3.2", next.String())
	next = diff.NextVersion(previous, diff.UpdateSummary{})
	assert.Equal("2.3.2", next.String())
}
