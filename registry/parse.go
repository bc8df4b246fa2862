package registry

import (
	"strings"

	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
)

// registryTaxonXRefPrefix prefix of taxonomy cross references within db_xref qualifiers
const registryTaxonXRefPrefix = "taxon:"

// firstQualifier the first value of a source qualifier, or "" when absent
func firstQualifier(qualifiers map[string][]string, name string) string {
	values, ok := qualifiers[name]
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}

// extractTaxID pull the external taxonomy ID out of the db_xref qualifiers
func extractTaxID(qualifiers map[string][]string) int64 {
	for _, xref := range qualifiers["db_xref"] {
		if !strings.HasPrefix(xref, registryTaxonXRefPrefix) {
			continue
		}
		rendered := strings.TrimPrefix(xref, registryTaxonXRefPrefix)
		taxID := int64(0)
		for _, digit := range rendered {
			if digit < '0' || digit > '9' {
				taxID = 0
				break
			}
			taxID = taxID*10 + int64(digit-'0')
		}
		if taxID > 0 {
			return taxID
		}
	}
	return 0
}

// extractTypeMaterial the type_material qualifier, falling back to note
// qualifiers naming a holotype or paratype specimen. Fallback values may open
// with a literal "type: " prefix, which is stripped; otherwise the note is
// kept whole.
func extractTypeMaterial(qualifiers map[string][]string) string {
	if value := firstQualifier(qualifiers, "type_material"); len(value) > 0 {
		return value
	}
	for _, note := range qualifiers["note"] {
		lowered := strings.ToLower(note)
		if !strings.Contains(lowered, "paratype") && !strings.Contains(lowered, "holotype") {
			continue
		}
		if strings.HasPrefix(lowered, "type: ") {
			return note[len("type: "):]
		}
		return note
	}
	return ""
}

/*
ParseRawRecords convert raw registry records into sequence record entries.

Raw records carrying no sequence payload are silently skipped; the registry
holds such placeholder entries for records whose data lives elsewhere.

	@param snapshotID string - the snapshot the records will belong to
	@param raw []RawRecord - raw registry records
	@return parsed sequence record entries
*/
func ParseRawRecords(snapshotID string, raw []RawRecord) []models.SequenceRecord {
	parsed := make([]models.SequenceRecord, 0, len(raw))

	for _, entry := range raw {
		if len(entry.Sequence) == 0 {
			continue
		}

		record := models.SequenceRecord{
			ID:               uuid.NewString(),
			SnapshotID:       snapshotID,
			AccessionNumber:  entry.Accession,
			VersionTag:       entry.VersionTag,
			Definition:       entry.Definition,
			DNASequence:      entry.Sequence,
			Organism:         firstQualifier(entry.SourceQualifiers, "organism"),
			Organelle:        firstQualifier(entry.SourceQualifiers, "organelle"),
			Isolate:          firstQualifier(entry.SourceQualifiers, "isolate"),
			Country:          firstQualifier(entry.SourceQualifiers, "country"),
			SpecimenVoucher:  firstQualifier(entry.SourceQualifiers, "specimen_voucher"),
			LatLon:           firstQualifier(entry.SourceQualifiers, "lat_lon"),
			TypeMaterial:     extractTypeMaterial(entry.SourceQualifiers),
			Keywords:         strings.Join(entry.Keywords, ", "),
			ModificationDate: entry.ModificationDate,
			TaxID:            extractTaxID(entry.SourceQualifiers),
			Lineage:          strings.Join(entry.Lineage, ", "),
		}

		// Only the first reference is retained
		if len(entry.References) > 0 {
			record.Journal = entry.References[0].Journal
			record.Authors = entry.References[0].Authors
			record.Title = entry.References[0].Title
		}

		parsed = append(parsed, record)
	}

	return parsed
}
