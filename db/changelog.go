package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/barreldb/barrel/models"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

// ======================================================================================
// Snapshot change log

/*
RecordChangeEvent append an entry to a snapshot's change log

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param eventType models.ChangeEventTypeENUMType - change event type
	@param metadata interface{} - event type specific details
	@returns the change-log entry
*/
func (d *databaseImpl) RecordChangeEvent(
	_ context.Context,
	snapshotID string,
	eventType models.ChangeEventTypeENUMType,
	metadata interface{},
) (models.ChangeEvent, error) {
	newEntry := ChangeEventDBEntry{
		ChangeEvent: models.ChangeEvent{
			ID:         ulid.Make().String(),
			SnapshotID: snapshotID,
			EventType:  eventType,
		},
	}

	if metadata != nil {
		if err := d.validator.Struct(metadata); err != nil {
			return models.ChangeEvent{}, fmt.Errorf(
				"new change event '%s' metadata entry is not valid [%w]", eventType, err,
			)
		}

		metadataStr, _ := json.Marshal(&metadata)
		newEntry.Metadata = datatypes.JSON(metadataStr)
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.ChangeEvent{}, fmt.Errorf(
			"new change event '%s' entry is not valid [%w]", eventType, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.ChangeEvent{}, fmt.Errorf(
			"new change event '%s' insert failed [%w]", eventType, tmp.Error,
		)
	}

	return newEntry.ChangeEvent, nil
}

/*
ListChangeEvents list change-log entries of a snapshot

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filters ChangeEventQueryFilter - entry listing filter
	@return list of change-log entries
*/
func (d *databaseImpl) ListChangeEvents(
	_ context.Context, snapshotID string, filters ChangeEventQueryFilter,
) ([]models.ChangeEvent, error) {
	query := d.db.Model(&ChangeEventDBEntry{}).Where("snapshot_id = ?", snapshotID)

	if len(filters.EventTypes) > 0 {
		query = query.Where("type in ?", filters.EventTypes)
	}

	if filters.EventsAfter != nil {
		query = query.Where("created_at >= ?", *filters.EventsAfter)
	}
	if filters.EventsBefore != nil {
		query = query.Where("created_at <= ?", *filters.EventsBefore)
	}

	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}

	query = query.Order("id")

	var entries []ChangeEventDBEntry
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list snapshot change events [%w]", tmp.Error)
	}

	result := []models.ChangeEvent{}
	for _, entry := range entries {
		result = append(result, entry.ChangeEvent)
	}

	return result, nil
}
