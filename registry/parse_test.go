package registry_test

import (
	"testing"
	"time"

	"github.com/barreldb/barrel/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestParseRawRecords verifies the behavior of `ParseRawRecords`.
func TestParseRawRecords(t *testing.T) {
	assert := assert.New(t)

	snapshotID := uuid.NewString()
	modified := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)

	parsed := registry.ParseRawRecords(snapshotID, []registry.RawRecord{
		{
			Accession:        "AB000001",
			VersionTag:       "AB000001.2",
			Definition:       "Danio rerio 12S ribosomal RNA gene",
			Sequence:         "ACGTACGT",
			Keywords:         []string{"barcode", "mitochondrial"},
			ModificationDate: modified,
			References: []registry.RawReference{
				{Journal: "J Fish Biol", Authors: "Doe J.", Title: "Zebrafish barcodes"},
				{Journal: "Unused", Authors: "Unused", Title: "Unused"},
			},
			Lineage: []string{"Eukaryota", "Metazoa", "Chordata"},
			SourceQualifiers: map[string][]string{
				"organism":         {"Danio rerio"},
				"organelle":        {"mitochondrion"},
				"isolate":          {"DR-17"},
				"country":          {"India: Ganges"},
				"specimen_voucher": {"NRM 12345"},
				"lat_lon":          {"25.2 N 86.9 E"},
				"type_material":    {"holotype of Danio rerio"},
				"db_xref":          {"BOLD:AAA0001", "taxon:7955"},
			},
		},
		// No sequence payload; silently skipped
		{Accession: "AB000002", VersionTag: "AB000002.1"},
	})

	assert.Len(parsed, 1)
	record := parsed[0]
	assert.Equal(snapshotID, record.SnapshotID)
	assert.Equal("AB000001", record.AccessionNumber)
	assert.Equal("AB000001.2", record.VersionTag)
	assert.Equal("ACGTACGT", record.DNASequence)
	assert.Equal("Danio rerio", record.Organism)
	assert.Equal("mitochondrion", record.Organelle)
	assert.Equal("DR-17", record.Isolate)
	assert.Equal("India: Ganges", record.Country)
	assert.Equal("NRM 12345", record.SpecimenVoucher)
	assert.Equal("25.2 N 86.9 E", record.LatLon)
	assert.Equal("holotype of Danio rerio", record.TypeMaterial)
	assert.Equal("J Fish Biol", record.Journal)
	assert.Equal("Doe J.", record.Authors)
	assert.Equal("Zebrafish barcodes", record.Title)
	assert.Equal("barcode, mitochondrial", record.Keywords)
	assert.Equal(modified, record.ModificationDate)
	assert.Equal(int64(7955), record.TaxID)
	assert.Equal("Eukaryota, Metazoa, Chordata", record.Lineage)
	assert.True(record.MissingTaxonomy())
}

// TestParseTypeMaterialFallback verifies the note-based type material fallback
// of `ParseRawRecords`.
func TestParseTypeMaterialFallback(t *testing.T) {
	assert := assert.New(t)

	snapshotID := uuid.NewString()

	parsed := registry.ParseRawRecords(snapshotID, []registry.RawRecord{
		{
			Accession: "AB000001", VersionTag: "AB000001.1", Sequence: "ACGT",
			SourceQualifiers: map[string][]string{
				"note": {"type: paratype of Danio kyathit"},
			},
		},
		{
			Accession: "AB000002", VersionTag: "AB000002.1", Sequence: "ACGT",
			SourceQualifiers: map[string][]string{
				"note": {"holotype specimen"},
			},
		},
		{
			Accession: "AB000003", VersionTag: "AB000003.1", Sequence: "ACGT",
			SourceQualifiers: map[string][]string{
				"note": {"ordinary collection note"},
			},
		},
		{
			Accession: "AB000004", VersionTag: "AB000004.1", Sequence: "ACGT",
			SourceQualifiers: map[string][]string{
				"note": {"Paratype: NRM 54321"},
			},
		},
	})

	assert.Len(parsed, 4)
	// A leading "type: " prefix is stripped
	assert.Equal("paratype of Danio kyathit", parsed[0].TypeMaterial)
	// Otherwise the note is kept whole
	assert.Equal("holotype specimen", parsed[1].TypeMaterial)
	assert.Equal("", parsed[2].TypeMaterial)
	// "type: " mid-note is not a prefix; nothing is stripped
	assert.Equal("Paratype: NRM 54321", parsed[3].TypeMaterial)
}
