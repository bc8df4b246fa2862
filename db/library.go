// Package db - persistence layer
package db

import (
	"context"
	"fmt"

	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
)

// ======================================================================================
// Reference libraries

/*
DefineNewLibrary define new reference library

	@param ctx context.Context - execution context
	@param name string - library name
	@param description string - library description
	@param owner string - library owner identity
	@param public bool - whether the library is publicly visible
	@returns library entry
*/
func (d *databaseImpl) DefineNewLibrary(
	_ context.Context, name string, description string, owner string, public bool,
) (models.Library, error) {
	newEntry := LibraryDBEntry{
		Library: models.Library{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			Owner:       owner,
			Public:      public,
		},
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.Library{}, fmt.Errorf("new library '%s' is not valid [%w]", name, err)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.Library{}, fmt.Errorf("new library '%s' failed insert [%w]", name, tmp.Error)
	}

	return newEntry.Library, nil
}

// getLibraryEntry find a library by ID
func (d *databaseImpl) getLibraryEntry(libraryID string) (LibraryDBEntry, error) {
	var entry LibraryDBEntry
	err := d.db.Where("id = ?", libraryID).First(&entry).Error
	return entry, err
}

/*
GetLibrary fetch a reference library by ID

	@param ctx context.Context - execution context
	@param libraryID string - library ID
	@returns library entry
*/
func (d *databaseImpl) GetLibrary(
	_ context.Context, libraryID string,
) (models.Library, error) {
	entry, err := d.getLibraryEntry(libraryID)
	if err != nil {
		return models.Library{}, fmt.Errorf("failed to fetch library %s [%w]", libraryID, err)
	}

	return entry.Library, nil
}

/*
GetLibraryByName fetch a reference library by name

	@param ctx context.Context - execution context
	@param libraryName string - library name
	@returns library entry
*/
func (d *databaseImpl) GetLibraryByName(
	_ context.Context, libraryName string,
) (models.Library, error) {
	var entry LibraryDBEntry
	if tmp := d.db.Where("name = ?", libraryName).First(&entry); tmp.Error != nil {
		return models.Library{}, fmt.Errorf("failed to fetch library '%s' [%w]", libraryName, tmp.Error)
	}

	return entry.Library, nil
}

/*
ListLibraries list reference libraries

	@param ctx context.Context - execution context
	@param filters LibraryQueryFilter - entry listing filter
	@return list of libraries
*/
func (d *databaseImpl) ListLibraries(
	_ context.Context, filters LibraryQueryFilter,
) ([]models.Library, error) {
	query := d.db.Model(&LibraryDBEntry{})

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("name")

	var entries []LibraryDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list reference libraries [%w]", tmp.Error)
	}

	result := []models.Library{}
	for _, entry := range entries {
		result = append(result, entry.Library)
	}

	return result, nil
}

/*
DeleteLibrary delete a reference library and its snapshots

	@param ctx context.Context - execution context
	@param libraryID string - library ID
*/
func (d *databaseImpl) DeleteLibrary(_ context.Context, libraryID string) error {
	entry, err := d.getLibraryEntry(libraryID)
	if err != nil {
		return fmt.Errorf("failed to fetch library %s [%w]", libraryID, err)
	}

	if tmp := d.db.Delete(&entry); tmp.Error != nil {
		return fmt.Errorf("failed to delete library %s [%w]", libraryID, tmp.Error)
	}

	return nil
}
