package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
)

// ======================================================================================
// Sequence records

// ambiguousBaseCountSQL sequence ambiguity computed within the query: total
// length minus the canonical A/C/G/T symbols, case-insensitive
const ambiguousBaseCountSQL = "length(replace(replace(replace(replace(upper(dna_sequence)," +
	"'A',''),'C',''),'G',''),'T',''))"

/*
BulkInsertSequences insert a batch of sequence records into a snapshot

Records are inserted under the target snapshot regardless of any snapshot ID
already set on them; IDs are assigned here.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param records []models.SequenceRecord - the records to insert
	@returns inserted record entries
*/
func (d *databaseImpl) BulkInsertSequences(
	_ context.Context, snapshotID string, records []models.SequenceRecord,
) ([]models.SequenceRecord, error) {
	if len(records) == 0 {
		return []models.SequenceRecord{}, nil
	}

	entries := make([]SequenceRecordDBEntry, 0, len(records))
	for _, record := range records {
		record.ID = uuid.NewString()
		record.SnapshotID = snapshotID
		newEntry := SequenceRecordDBEntry{SequenceRecord: record}
		if err := d.validator.Struct(&newEntry); err != nil {
			return nil, fmt.Errorf(
				"new sequence record '%s' is not valid [%w]", record.AccessionNumber, err,
			)
		}
		entries = append(entries, newEntry)
	}

	if tmp := d.db.CreateInBatches(&entries, 100); tmp.Error != nil {
		return nil, fmt.Errorf(
			"bulk insert of %d sequence records failed [%w]", len(entries), tmp.Error,
		)
	}

	result := []models.SequenceRecord{}
	for _, entry := range entries {
		result = append(result, entry.SequenceRecord)
	}

	return result, nil
}

/*
BulkUpdateSequences persist field changes of existing sequence records

	@param ctx context.Context - execution context
	@param records []models.SequenceRecord - the records to update
*/
func (d *databaseImpl) BulkUpdateSequences(
	_ context.Context, records []models.SequenceRecord,
) error {
	for _, record := range records {
		record.UpdatedAt = time.Now().UTC()
		entry := SequenceRecordDBEntry{SequenceRecord: record}
		if err := d.validator.Struct(&entry); err != nil {
			return fmt.Errorf(
				"updated sequence record '%s' is not valid [%w]", record.AccessionNumber, err,
			)
		}
		if tmp := d.db.Model(&SequenceRecordDBEntry{}).
			Where("id = ?", record.ID).
			Select("*").
			Omit("id", "snapshot_id", "created_at").
			Updates(&entry.SequenceRecord); tmp.Error != nil {
			return fmt.Errorf(
				"update of sequence record '%s' failed [%w]", record.AccessionNumber, tmp.Error,
			)
		}
	}
	return nil
}

/*
DeleteSequencesByAccession remove records of a snapshot by accession number

Accessions without a matching record are ignored.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param accessions []string - accession numbers to remove
	@returns the removed record entries
*/
func (d *databaseImpl) DeleteSequencesByAccession(
	_ context.Context, snapshotID string, accessions []string,
) ([]models.SequenceRecord, error) {
	if len(accessions) == 0 {
		return []models.SequenceRecord{}, nil
	}

	var entries []SequenceRecordDBEntry
	if tmp := d.db.
		Where("snapshot_id = ?", snapshotID).
		Where("accession_number IN ?", accessions).
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf(
			"failed to query sequence records for deletion [%w]", tmp.Error,
		)
	}

	if len(entries) == 0 {
		return []models.SequenceRecord{}, nil
	}

	if tmp := d.db.
		Where("snapshot_id = ?", snapshotID).
		Where("accession_number IN ?", accessions).
		Delete(&SequenceRecordDBEntry{}); tmp.Error != nil {
		return nil, fmt.Errorf("failed to delete sequence records [%w]", tmp.Error)
	}

	result := []models.SequenceRecord{}
	for _, entry := range entries {
		result = append(result, entry.SequenceRecord)
	}

	return result, nil
}

/*
ListSequencesOfSnapshot list sequence records of a snapshot

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filters SequenceQueryFilter - entry listing filter
	@return list of records
*/
func (d *databaseImpl) ListSequencesOfSnapshot(
	_ context.Context, snapshotID string, filters SequenceQueryFilter,
) ([]models.SequenceRecord, error) {
	query := d.db.Model(&SequenceRecordDBEntry{}).Where("snapshot_id = ?", snapshotID)

	if len(filters.TargetAccessions) > 0 {
		query = query.Where("accession_number IN ?", filters.TargetAccessions)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("accession_number")

	var entries []SequenceRecordDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list sequence records [%w]", tmp.Error)
	}

	result := []models.SequenceRecord{}
	for _, entry := range entries {
		result = append(result, entry.SequenceRecord)
	}

	return result, nil
}

/*
ListSequencesViolatingFilter list records of a snapshot violating curation rules

The length and ambiguous-base predicates are evaluated within the query.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filter SequenceViolationFilter - OR-combined violation criteria
	@return list of violating records
*/
func (d *databaseImpl) ListSequencesViolatingFilter(
	_ context.Context, snapshotID string, filter SequenceViolationFilter,
) ([]models.SequenceRecord, error) {
	conditions := []string{}
	args := []interface{}{}

	if len(filter.Blacklist) > 0 {
		conditions = append(conditions, "(accession_number IN ? OR version_tag IN ?)")
		args = append(args, filter.Blacklist, filter.Blacklist)
	}
	if filter.MinLength > -1 {
		conditions = append(conditions, "length(dna_sequence) < ?")
		args = append(args, filter.MinLength)
	}
	if filter.MaxLength > -1 {
		conditions = append(conditions, "length(dna_sequence) > ?")
		args = append(args, filter.MaxLength)
	}
	if filter.MaxAmbiguousBases > -1 {
		conditions = append(conditions, ambiguousBaseCountSQL+" > ?")
		args = append(args, filter.MaxAmbiguousBases)
	}
	if filter.RequireTaxonomy {
		missingLineage := []string{}
		for _, column := range []string{
			"taxon_superkingdom_id", "taxon_kingdom_id", "taxon_phylum_id", "taxon_class_id",
			"taxon_order_id", "taxon_family_id", "taxon_genus_id", "taxon_species_id",
		} {
			missingLineage = append(missingLineage, column+" IS NULL")
		}
		conditions = append(conditions, "("+strings.Join(missingLineage, " OR ")+")")
	}

	if len(conditions) == 0 {
		return []models.SequenceRecord{}, nil
	}

	var entries []SequenceRecordDBEntry
	if tmp := d.db.
		Where("snapshot_id = ?", snapshotID).
		Where(strings.Join(conditions, " OR "), args...).
		Order("accession_number").
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to query violating sequence records [%w]", tmp.Error)
	}

	result := []models.SequenceRecord{}
	for _, entry := range entries {
		result = append(result, entry.SequenceRecord)
	}

	return result, nil
}
