// Package diff - record set comparison and version assignment logic
package diff

import (
	"github.com/barreldb/barrel/models"
)

// UpdateSummary partition of accession numbers by how a record set changed.
//
// Every accession present in either input set lands in exactly one bucket.
type UpdateSummary struct {
	// Added accessions in current but not previous
	Added []string
	// Deleted accessions in previous but not current
	Deleted []string
	// VersionChanged accessions whose version tag or sequence payload differs
	VersionChanged []string
	// MetadataChanged accessions with identical version tag and sequence but
	// at least one differing metadata field
	MetadataChanged []string
	// Unchanged accessions with no differences
	Unchanged []string
}

// HasContentChange whether the summary contains content-identity changes
func (s UpdateSummary) HasContentChange() bool {
	return len(s.Added) > 0 || len(s.Deleted) > 0 || len(s.VersionChanged) > 0
}

// HasMetadataChange whether the summary contains metadata-only changes
func (s UpdateSummary) HasMetadataChange() bool {
	return len(s.MetadataChanged) > 0
}

// metadataFieldsEqual compare the fixed metadata field list used for the
// metadata-changed classification. The version tag and sequence payload are
// deliberately excluded; they drive the version-changed bucket instead.
func metadataFieldsEqual(a, b models.SequenceRecord) bool {
	return a.Definition == b.Definition &&
		a.Organism == b.Organism &&
		a.Organelle == b.Organelle &&
		a.Isolate == b.Isolate &&
		a.Country == b.Country &&
		a.SpecimenVoucher == b.SpecimenVoucher &&
		a.TypeMaterial == b.TypeMaterial &&
		a.LatLon == b.LatLon
}

/*
Summarize classify the differences between two record sets.

The classification is exhaustive and mutually exclusive over the union of
accession numbers of both sets. Version-tag or sequence differences dominate
metadata differences when both apply.

	@param previous []models.SequenceRecord - the earlier record set
	@param current []models.SequenceRecord - the later record set
	@return partition of accessions into the five change buckets
*/
func Summarize(previous, current []models.SequenceRecord) UpdateSummary {
	summary := UpdateSummary{
		Added:           []string{},
		Deleted:         []string{},
		VersionChanged:  []string{},
		MetadataChanged: []string{},
		Unchanged:       []string{},
	}

	byAccessionPrevious := map[string]models.SequenceRecord{}
	byAccessionCurrent := map[string]models.SequenceRecord{}
	for _, record := range current {
		byAccessionCurrent[record.AccessionNumber] = record
	}
	for _, record := range previous {
		byAccessionPrevious[record.AccessionNumber] = record
		if _, ok := byAccessionCurrent[record.AccessionNumber]; !ok {
			summary.Deleted = append(summary.Deleted, record.AccessionNumber)
		}
	}

	for _, record := range current {
		before, ok := byAccessionPrevious[record.AccessionNumber]
		if !ok {
			summary.Added = append(summary.Added, record.AccessionNumber)
			continue
		}
		if record.VersionTag != before.VersionTag || record.DNASequence != before.DNASequence {
			summary.VersionChanged = append(summary.VersionChanged, record.AccessionNumber)
		} else if !metadataFieldsEqual(record, before) {
			summary.MetadataChanged = append(summary.MetadataChanged, record.AccessionNumber)
		} else {
			summary.Unchanged = append(summary.Unchanged, record.AccessionNumber)
		}
	}

	return summary
}
