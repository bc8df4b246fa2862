package db

import (
	"context"

	"gorm.io/gorm"
)

// DefineTables prepare a database with the full table set. Production
// deployments manage the schema through migrations; this is meant for
// unit-testing and throwaway sqlite databases.
func DefineTables(_ context.Context, db *gorm.DB) error {
	return db.AutoMigrate(
		LibraryDBEntry{},
		SnapshotDBEntry{},
		SequenceRecordDBEntry{},
		TaxonomyNodeDBEntry{},
		ChangeEventDBEntry{},
	)
}
