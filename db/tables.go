package db

import "github.com/barreldb/barrel/models"

// --------------------------------------------------------------------------------------
// Libraries

// LibraryDBEntry reference library DB entry
type LibraryDBEntry struct {
	models.Library
}

// TableName hard code table name
func (LibraryDBEntry) TableName() string {
	return "libraries"
}

// --------------------------------------------------------------------------------------
// Snapshots

// SnapshotDBEntry library snapshot DB entry
type SnapshotDBEntry struct {
	models.Snapshot
	Library LibraryDBEntry `gorm:"constraint:OnDelete:CASCADE;foreignKey:LibraryID" validate:"-"`
}

// TableName hard code table name
func (SnapshotDBEntry) TableName() string {
	return "snapshots"
}

// --------------------------------------------------------------------------------------
// Sequence records

// SequenceRecordDBEntry sequence record DB entry
type SequenceRecordDBEntry struct {
	models.SequenceRecord
	Snapshot SnapshotDBEntry `gorm:"constraint:OnDelete:CASCADE;foreignKey:SnapshotID" validate:"-"`
}

// TableName hard code table name
func (SequenceRecordDBEntry) TableName() string {
	return "sequence_records"
}

// --------------------------------------------------------------------------------------
// Taxonomy nodes

// TaxonomyNodeDBEntry taxonomic lineage node DB entry
type TaxonomyNodeDBEntry struct {
	models.TaxonomyNode
}

// TableName hard code table name
func (TaxonomyNodeDBEntry) TableName() string {
	return "taxonomy_nodes"
}

// --------------------------------------------------------------------------------------
// Snapshot change-log events

// ChangeEventDBEntry snapshot change-log DB entry
type ChangeEventDBEntry struct {
	models.ChangeEvent
	Snapshot SnapshotDBEntry `gorm:"constraint:OnDelete:CASCADE;foreignKey:SnapshotID" validate:"-"`
}

// TableName hard code table name
func (ChangeEventDBEntry) TableName() string {
	return "snapshot_change_events"
}
