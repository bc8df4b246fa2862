package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// ChangeEventTypeENUMType snapshot change-log event type ENUM value type
type ChangeEventTypeENUMType string

const (
	// ChangeEventTypeSnapshotCreated new snapshot entered the library history
	ChangeEventTypeSnapshotCreated ChangeEventTypeENUMType = "SNAPSHOT_CREATED"

	// ChangeEventTypeSequencesAdded sequences were fetched and added
	ChangeEventTypeSequencesAdded ChangeEventTypeENUMType = "SEQUENCES_ADDED"

	// ChangeEventTypeSequencesUpdated sequences were refreshed from the registry
	ChangeEventTypeSequencesUpdated ChangeEventTypeENUMType = "SEQUENCES_UPDATED"

	// ChangeEventTypeSequencesDeleted sequences were explicitly removed
	ChangeEventTypeSequencesDeleted ChangeEventTypeENUMType = "SEQUENCES_DELETED"

	// ChangeEventTypeSequencesFiltered sequences were removed by filter criteria
	ChangeEventTypeSequencesFiltered ChangeEventTypeENUMType = "SEQUENCES_FILTERED"

	// ChangeEventTypeSnapshotLocked snapshot was sealed
	ChangeEventTypeSnapshotLocked ChangeEventTypeENUMType = "SNAPSHOT_LOCKED"
)

// ChangeEvent one append-only change-log entry of a snapshot.
//
// The change log is the audit trail consumed by the external history viewer.
// Entries are only ever written in the same transaction as the data change
// they describe.
type ChangeEvent struct {
	// ID change-log entry ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required"`

	// SnapshotID the snapshot this entry belongs to
	SnapshotID string `json:"snapshot_id" gorm:"column:snapshot_id;not null;index" validate:"required,uuid_rfc4122"`

	// EventType change event type
	EventType ChangeEventTypeENUMType `json:"type" gorm:"column:type;not null" validate:"required,change_event_type"`

	// Metadata event type specific details
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"column:metadata;default:null"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseMetadata parse the metadata based on the event type
func (e ChangeEvent) ParseMetadata(validator *validator.Validate) (interface{}, error) {
	switch e.EventType {
	case ChangeEventTypeSequencesAdded:
		var parsed ChangeEventSequencesAdded
		if err := json.Unmarshal(e.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("change event '%s' metadata parse failed [%w]", e.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case ChangeEventTypeSequencesUpdated:
		fallthrough
	case ChangeEventTypeSequencesDeleted:
		var parsed ChangeEventSequencesTouched
		if err := json.Unmarshal(e.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("change event '%s' metadata parse failed [%w]", e.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case ChangeEventTypeSequencesFiltered:
		var parsed ChangeEventSequencesFiltered
		if err := json.Unmarshal(e.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("change event '%s' metadata parse failed [%w]", e.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case ChangeEventTypeSnapshotLocked:
		var parsed ChangeEventSnapshotLocked
		if err := json.Unmarshal(e.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("change event '%s' metadata parse failed [%w]", e.EventType, err)
		}
		return parsed, validator.Struct(&parsed)
	}
	return nil, nil
}

// ChangeEventSequencesAdded change event metadata for sequence additions
type ChangeEventSequencesAdded struct {
	// Accessions the accession numbers added
	Accessions []string `json:"accessions" validate:"required"`
	// SearchTerm free-text search term used for discovery, if any
	SearchTerm string `json:"search_term,omitempty"`
}

// ChangeEventSequencesTouched change event metadata for updates and deletions
type ChangeEventSequencesTouched struct {
	// Accessions the accession numbers affected
	Accessions []string `json:"accessions" validate:"required"`
}

// ChangeEventSequencesFiltered change event metadata for filter passes.
//
// Recorded even when nothing matched, so the history shows the criteria used.
type ChangeEventSequencesFiltered struct {
	// Criteria human-readable descriptions of the filter criteria applied
	Criteria []string `json:"criteria" validate:"required"`
	// Removed the version tags of the removed records
	Removed []string `json:"removed"`
}

// ChangeEventSnapshotLocked change event metadata for sealing
type ChangeEventSnapshotLocked struct {
	// Version the version string assigned at sealing
	Version string `json:"version" validate:"required"`
}
