package db

import (
	"context"
	"fmt"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/barreldb/barrel/models"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CommonListEntryQueryFilter common query filter when listing data entries
type CommonListEntryQueryFilter struct {
	Limit  *int
	Offset *int
}

// LibraryQueryFilter reference library query filter conditions
type LibraryQueryFilter struct {
	CommonListEntryQueryFilter
}

// SnapshotQueryFilter snapshot query filter conditions
type SnapshotQueryFilter struct {
	CommonListEntryQueryFilter
	// TargetLibraryID fetch only snapshots of this library
	TargetLibraryID *string
	// LockedOnly fetch only sealed snapshots
	LockedOnly bool
}

// SequenceQueryFilter sequence record query filter conditions
type SequenceQueryFilter struct {
	CommonListEntryQueryFilter
	// TargetAccessions fetch only records with these accession numbers
	TargetAccessions []string
}

// ChangeEventQueryFilter change-log query filter conditions
type ChangeEventQueryFilter struct {
	CommonListEntryQueryFilter
	// EventTypes the specific event types to query for
	EventTypes []models.ChangeEventTypeENUMType
	// EventsAfter filter for events after this timestamp
	EventsAfter *time.Time
	// EventsBefore filter for events before this timestamp
	EventsBefore *time.Time
}

// SequenceViolationFilter criteria for selecting records that violate curation
// rules. The predicates combine with logical OR; matching any one condition
// selects the record. A bound of -1 means unbounded.
type SequenceViolationFilter struct {
	// MinLength minimum acceptable sequence length
	MinLength int
	// MaxLength maximum acceptable sequence length
	MaxLength int
	// MaxAmbiguousBases maximum acceptable count of non-ACGT symbols
	MaxAmbiguousBases int
	// Blacklist identifiers (accession number or version tag) to reject
	Blacklist []string
	// RequireTaxonomy select records missing any of the eight lineage levels
	RequireTaxonomy bool
}

// Matches whether a record violates any of the active criteria.
//
// In-memory counterpart of ListSequencesViolatingFilter, for screening
// records before they are persisted.
func (f SequenceViolationFilter) Matches(record models.SequenceRecord) bool {
	for _, entry := range f.Blacklist {
		if entry == record.AccessionNumber || entry == record.VersionTag {
			return true
		}
	}
	if f.MinLength > -1 && len(record.DNASequence) < f.MinLength {
		return true
	}
	if f.MaxLength > -1 && len(record.DNASequence) > f.MaxLength {
		return true
	}
	if f.MaxAmbiguousBases > -1 && record.AmbiguousBaseCount() > f.MaxAmbiguousBases {
		return true
	}
	if f.RequireTaxonomy && record.MissingTaxonomy() {
		return true
	}
	return false
}

// Describe render the active criteria as change-log friendly strings
func (f SequenceViolationFilter) Describe() []string {
	criteria := []string{}
	if len(f.Blacklist) > 0 {
		criteria = append(criteria, fmt.Sprintf("Remove using blacklist of %d identifiers", len(f.Blacklist)))
	}
	if f.MinLength > -1 {
		criteria = append(criteria, fmt.Sprintf("Delete length < %d bp", f.MinLength))
	}
	if f.MaxLength > -1 {
		criteria = append(criteria, fmt.Sprintf("Delete length > %d bp", f.MaxLength))
	}
	if f.MaxAmbiguousBases > -1 {
		criteria = append(criteria, fmt.Sprintf("Delete if ambiguous bases > %d bp", f.MaxAmbiguousBases))
	}
	if f.RequireTaxonomy {
		criteria = append(criteria, "Delete if taxonomic lineage incomplete")
	}
	return criteria
}

// Database the database handle for interacting with the data base
type Database interface {
	// ------------------------------------------------------------------------------------
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
	DefineNewLibrary(
		ctx context.Context, name string, description string, owner string, public bool,
	) (models.Library, error)

	/*
		GetLibrary fetch a reference library by ID

			@param ctx context.Context - execution context
			@param libraryID string - library ID
			@returns library entry
	*/
	GetLibrary(ctx context.Context, libraryID string) (models.Library, error)

	/*
		GetLibraryByName fetch a reference library by name

			@param ctx context.Context - execution context
			@param libraryName string - library name
			@returns library entry
	*/
	GetLibraryByName(ctx context.Context, libraryName string) (models.Library, error)

	/*
		ListLibraries list reference libraries

			@param ctx context.Context - execution context
			@param filters LibraryQueryFilter - entry listing filter
			@return list of libraries
	*/
	ListLibraries(ctx context.Context, filters LibraryQueryFilter) ([]models.Library, error)

	/*
		DeleteLibrary delete a reference library and its snapshots

			@param ctx context.Context - execution context
			@param libraryID string - library ID
	*/
	DeleteLibrary(ctx context.Context, libraryID string) error

	// ------------------------------------------------------------------------------------
	// Snapshots

	/*
		DefineNewSnapshot define new unlocked snapshot within a library

			@param ctx context.Context - execution context
			@param library models.Library - the parent library
			@param description string - snapshot description
			@returns snapshot entry
	*/
	DefineNewSnapshot(
		ctx context.Context, library models.Library, description string,
	) (models.Snapshot, error)

	/*
		GetSnapshot fetch a snapshot by ID

			@param ctx context.Context - execution context
			@param snapshotID string - snapshot ID
			@returns snapshot entry
	*/
	GetSnapshot(ctx context.Context, snapshotID string) (models.Snapshot, error)

	/*
		ListSnapshots list snapshots

			@param ctx context.Context - execution context
			@param filters SnapshotQueryFilter - entry listing filter
			@return list of snapshots
	*/
	ListSnapshots(ctx context.Context, filters SnapshotQueryFilter) ([]models.Snapshot, error)

	/*
		GetLatestSealedSnapshot fetch the most recently sealed snapshot of a library

			@param ctx context.Context - execution context
			@param libraryID string - library ID
			@returns the snapshot, or nil if the library has no sealed snapshot
	*/
	GetLatestSealedSnapshot(ctx context.Context, libraryID string) (*models.Snapshot, error)

	/*
		SealSnapshot assign the version triple and mark the snapshot locked

			@param ctx context.Context - execution context
			@param snapshotID string - snapshot ID
			@param genbank int - genbank version component
			@param major int - major version component
			@param minor int - minor version component
			@returns the updated snapshot entry
	*/
	SealSnapshot(
		ctx context.Context, snapshotID string, genbank, major, minor int,
	) (models.Snapshot, error)

	// ------------------------------------------------------------------------------------
	// Sequence records

	/*
		BulkInsertSequences insert a batch of sequence records into a snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param records []models.SequenceRecord - the records to insert
			@returns inserted record entries
	*/
	BulkInsertSequences(
		ctx context.Context, snapshotID string, records []models.SequenceRecord,
	) ([]models.SequenceRecord, error)

	/*
		BulkUpdateSequences persist field changes of existing sequence records

			@param ctx context.Context - execution context
			@param records []models.SequenceRecord - the records to update
	*/
	BulkUpdateSequences(ctx context.Context, records []models.SequenceRecord) error

	/*
		DeleteSequencesByAccession remove records of a snapshot by accession number

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param accessions []string - accession numbers to remove
			@returns the removed record entries
	*/
	DeleteSequencesByAccession(
		ctx context.Context, snapshotID string, accessions []string,
	) ([]models.SequenceRecord, error)

	/*
		ListSequencesOfSnapshot list sequence records of a snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filters SequenceQueryFilter - entry listing filter
			@return list of records
	*/
	ListSequencesOfSnapshot(
		ctx context.Context, snapshotID string, filters SequenceQueryFilter,
	) ([]models.SequenceRecord, error)

	/*
		ListSequencesViolatingFilter list records of a snapshot violating curation rules

		The length and ambiguous-base predicates are evaluated within the query.

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filter SequenceViolationFilter - OR-combined violation criteria
			@return list of violating records
	*/
	ListSequencesViolatingFilter(
		ctx context.Context, snapshotID string, filter SequenceViolationFilter,
	) ([]models.SequenceRecord, error)

	// ------------------------------------------------------------------------------------
	// Taxonomy nodes

	/*
		GetOrCreateTaxonomyNode fetch the lineage node for an external taxonomy ID,
		creating it if absent. Idempotent; the stored node is never overwritten.

			@param ctx context.Context - execution context
			@param taxID int64 - external taxonomy ID
			@param rank models.TaxonomicRankENUMType - lineage level
			@param scientificName string - scientific name of the taxon
			@returns the node entry
	*/
	GetOrCreateTaxonomyNode(
		ctx context.Context,
		taxID int64,
		rank models.TaxonomicRankENUMType,
		scientificName string,
	) (models.TaxonomyNode, error)

	/*
		GetTaxonomyNode fetch a lineage node by external taxonomy ID

			@param ctx context.Context - execution context
			@param taxID int64 - external taxonomy ID
			@returns the node entry
	*/
	GetTaxonomyNode(ctx context.Context, taxID int64) (models.TaxonomyNode, error)

	// ------------------------------------------------------------------------------------
	// Snapshot change log

	/*
		RecordChangeEvent append an entry to a snapshot's change log

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param eventType models.ChangeEventTypeENUMType - change event type
			@param metadata interface{} - event type specific details
			@returns the change-log entry
	*/
	RecordChangeEvent(
		ctx context.Context,
		snapshotID string,
		eventType models.ChangeEventTypeENUMType,
		metadata interface{},
	) (models.ChangeEvent, error)

	/*
		ListChangeEvents list change-log entries of a snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filters ChangeEventQueryFilter - entry listing filter
			@return list of change-log entries
	*/
	ListChangeEvents(
		ctx context.Context, snapshotID string, filters ChangeEventQueryFilter,
	) ([]models.ChangeEvent, error)
}

// databaseImpl implements Database
type databaseImpl struct {
	goutils.Component
	db        *gorm.DB
	validator *validator.Validate
}

// newDatabase define a new database client
func newDatabase(_ context.Context, sqlClient *gorm.DB) (Database, error) {
	logTags := log.Fields{"package": "barrel", "module": "db", "component": "db-client"}

	instance := &databaseImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db:        sqlClient,
		validator: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}
