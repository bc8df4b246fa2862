package models

import (
	"fmt"
	"time"
)

// Library the durable, named container of curated sequence collections.
//
// A library owns a history of snapshots. The snapshots hold the actual
// sequence records; the library itself only carries identity and metadata.
type Library struct {
	// ID library ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required,uuid_rfc4122"`

	// Name library display name
	Name string `json:"name" gorm:"column:name;not null;unique" validate:"required"`

	// Description short description of contents and usage
	Description string `json:"description" gorm:"column:description"`

	// Owner free-form identity of the library creator
	Owner string `json:"owner" gorm:"column:owner"`

	// Public whether the library is visible outside its owner
	Public bool `json:"public" gorm:"column:public;default:false"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot one versioned state of a library's record collection.
//
// A snapshot is editable while unlocked. Sealing assigns the version triple,
// sets Locked, and is one-way; a locked snapshot's record set never changes.
type Snapshot struct {
	// ID snapshot ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required,uuid_rfc4122"`

	// LibraryID the parent library
	LibraryID string `json:"library_id" gorm:"column:library_id;not null" validate:"required,uuid_rfc4122"`

	// GenbankVersion version component bumped on content-identity changes
	GenbankVersion int `json:"genbank_version" gorm:"column:genbank_version;default:0" validate:"gte=0"`
	// MajorVersion version component bumped on metadata-only changes
	MajorVersion int `json:"major_version" gorm:"column:major_version;default:0" validate:"gte=0"`
	// MinorVersion version component bumped on no-op republishing
	MinorVersion int `json:"minor_version" gorm:"column:minor_version;default:0" validate:"gte=0"`

	// Locked whether the snapshot is sealed against further edits
	Locked bool `json:"locked" gorm:"column:locked;default:false"`

	// Description short description of this version
	Description string `json:"description" gorm:"column:description"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionString the version triple rendered as "g.m.n"
func (s Snapshot) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", s.GenbankVersion, s.MajorVersion, s.MinorVersion)
}
