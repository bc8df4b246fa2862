package db

import (
	"context"
	"fmt"

	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
)

// ======================================================================================
// Snapshots

/*
DefineNewSnapshot define new unlocked snapshot within a library

	@param ctx context.Context - execution context
	@param library models.Library - the parent library
	@param description string - snapshot description
	@returns snapshot entry
*/
func (d *databaseImpl) DefineNewSnapshot(
	ctx context.Context, library models.Library, description string,
) (models.Snapshot, error) {
	newEntry := SnapshotDBEntry{
		Snapshot: models.Snapshot{
			ID:          uuid.NewString(),
			LibraryID:   library.ID,
			Locked:      false,
			Description: description,
		},
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.Snapshot{}, fmt.Errorf(
			"new snapshot for library %s is not valid [%w]", library.ID, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.Snapshot{}, fmt.Errorf(
			"new snapshot for library %s failed insert [%w]", library.ID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.RecordChangeEvent(
		ctx, newEntry.ID, models.ChangeEventTypeSnapshotCreated, nil,
	); err != nil {
		return models.Snapshot{}, fmt.Errorf(
			"failed to log snapshot creation for library %s [%w]", library.ID, err,
		)
	}

	return newEntry.Snapshot, nil
}

// getSnapshotEntry find a snapshot by ID
func (d *databaseImpl) getSnapshotEntry(snapshotID string) (SnapshotDBEntry, error) {
	var entry SnapshotDBEntry
	err := d.db.Where("id = ?", snapshotID).First(&entry).Error
	return entry, err
}

/*
GetSnapshot fetch a snapshot by ID

	@param ctx context.Context - execution context
	@param snapshotID string - snapshot ID
	@returns snapshot entry
*/
func (d *databaseImpl) GetSnapshot(
	_ context.Context, snapshotID string,
) (models.Snapshot, error) {
	entry, err := d.getSnapshotEntry(snapshotID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to fetch snapshot %s [%w]", snapshotID, err)
	}

	return entry.Snapshot, nil
}

/*
ListSnapshots list snapshots

	@param ctx context.Context - execution context
	@param filters SnapshotQueryFilter - entry listing filter
	@return list of snapshots
*/
func (d *databaseImpl) ListSnapshots(
	_ context.Context, filters SnapshotQueryFilter,
) ([]models.Snapshot, error) {
	query := d.db.Model(&SnapshotDBEntry{})

	if filters.TargetLibraryID != nil {
		query = query.Where("library_id = ?", *filters.TargetLibraryID)
	}
	if filters.LockedOnly {
		query = query.Where("locked = ?", true)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("genbank_version").Order("major_version").Order("minor_version")

	var entries []SnapshotDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list snapshots [%w]", tmp.Error)
	}

	result := []models.Snapshot{}
	for _, entry := range entries {
		result = append(result, entry.Snapshot)
	}

	return result, nil
}

/*
GetLatestSealedSnapshot fetch the most recently sealed snapshot of a library

	@param ctx context.Context - execution context
	@param libraryID string - library ID
	@returns the snapshot, or nil if the library has no sealed snapshot
*/
func (d *databaseImpl) GetLatestSealedSnapshot(
	_ context.Context, libraryID string,
) (*models.Snapshot, error) {
	var entries []SnapshotDBEntry
	tmp := d.db.
		Where("library_id = ?", libraryID).
		Where("locked = ?", true).
		Order("genbank_version desc").
		Order("major_version desc").
		Order("minor_version desc").
		Limit(1).
		Find(&entries)
	if tmp.Error != nil {
		return nil, fmt.Errorf(
			"failed to query sealed snapshots of library %s [%w]", libraryID, tmp.Error,
		)
	}

	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0].Snapshot, nil
}

/*
SealSnapshot assign the version triple and mark the snapshot locked

	@param ctx context.Context - execution context
	@param snapshotID string - snapshot ID
	@param genbank int - genbank version component
	@param major int - major version component
	@param minor int - minor version component
	@returns the updated snapshot entry
*/
func (d *databaseImpl) SealSnapshot(
	ctx context.Context, snapshotID string, genbank, major, minor int,
) (models.Snapshot, error) {
	entry, err := d.getSnapshotEntry(snapshotID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to fetch snapshot %s [%w]", snapshotID, err)
	}

	if entry.Locked {
		return models.Snapshot{}, fmt.Errorf("snapshot %s is already sealed", snapshotID)
	}

	entry.GenbankVersion = genbank
	entry.MajorVersion = major
	entry.MinorVersion = minor
	entry.Locked = true
	if tmp := d.db.Model(&SnapshotDBEntry{}).Where("id = ?", snapshotID).Updates(map[string]interface{}{
		"genbank_version": genbank,
		"major_version":   major,
		"minor_version":   minor,
		"locked":          true,
	}); tmp.Error != nil {
		return models.Snapshot{}, fmt.Errorf("failed to seal snapshot %s [%w]", snapshotID, tmp.Error)
	}

	// Record this event
	if _, err := d.RecordChangeEvent(
		ctx, snapshotID, models.ChangeEventTypeSnapshotLocked,
		models.ChangeEventSnapshotLocked{Version: entry.VersionString()},
	); err != nil {
		return models.Snapshot{}, fmt.Errorf(
			"failed to log seal of snapshot %s [%w]", snapshotID, err,
		)
	}

	return entry.Snapshot, nil
}
