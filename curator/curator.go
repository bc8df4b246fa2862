package curator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/diff"
	"github.com/barreldb/barrel/models"
	"github.com/barreldb/barrel/registry"
	"github.com/go-playground/validator/v10"
)

// LibraryCurator manages reference libraries and mutates their working
// snapshots.
//
// Every mutation is serialized per snapshot, and commits its data change and
// the matching change-log entry in one transaction.
type LibraryCurator interface {
	/*
		CreateLibrary define a new reference library with an empty working snapshot

			@param ctx context.Context - execution context
			@param name string - library name
			@param description string - library description
			@param owner string - library owner identity
			@param public bool - whether the library is publicly visible
			@return the library and its working snapshot
	*/
	CreateLibrary(
		ctx context.Context, name string, description string, owner string, public bool,
	) (models.Library, models.Snapshot, error)

	/*
		AddRecordsByAccession fetch records from the registry and add them to a snapshot.

		When a violation filter is given, fetched records matching it are
		screened out before insertion.

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param accessions []string - accession numbers to add
			@param filter *db.SequenceViolationFilter - optional pre-insertion screen
			@return the added record entries
	*/
	AddRecordsByAccession(
		ctx context.Context, snapshotID string, accessions []string,
		filter *db.SequenceViolationFilter,
	) ([]models.SequenceRecord, error)

	/*
		AddRecordsBySearch discover records via free-text search and add them to a snapshot.

		Records already present in the snapshot are skipped. When a violation
		filter is given, fetched records matching it are screened out before
		insertion.

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param term string - free-text search term
			@param filter *db.SequenceViolationFilter - optional pre-insertion screen
			@return the added record entries
	*/
	AddRecordsBySearch(
		ctx context.Context, snapshotID string, term string,
		filter *db.SequenceViolationFilter,
	) ([]models.SequenceRecord, error)

	/*
		UpdateRecords refresh records of a snapshot from the registry

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param accessions []string - accession numbers to refresh; empty refreshes all
			@return the refreshed record entries
	*/
	UpdateRecords(
		ctx context.Context, snapshotID string, accessions []string,
	) ([]models.SequenceRecord, error)

	/*
		DeleteRecords remove records of a snapshot by accession number

		Accessions without a matching record are ignored.

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param accessions []string - accession numbers to remove
			@return number of records removed
	*/
	DeleteRecords(ctx context.Context, snapshotID string, accessions []string) (int, error)

	/*
		FilterRecords remove records of a snapshot violating curation rules.

		The applied criteria are recorded in the change log even when no record
		matched.

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filter db.SequenceViolationFilter - OR-combined violation criteria
			@return version tags of the removed records
	*/
	FilterRecords(
		ctx context.Context, snapshotID string, filter db.SequenceViolationFilter,
	) ([]string, error)

	/*
		CloneSnapshot copy a snapshot's record set into a new unlocked snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the snapshot to copy
			@param description string - description of the new snapshot
			@return the new working snapshot
	*/
	CloneSnapshot(
		ctx context.Context, snapshotID string, description string,
	) (models.Snapshot, error)

	/*
		SealSnapshot version, materialize, and lock a snapshot.

		The version follows from the differences against the library's most
		recently sealed snapshot. The record set is written out as FASTA and
		handed to the index build tool; the snapshot is locked only after the
		build succeeded.

			@param ctx context.Context - execution context
			@param snapshotID string - the snapshot to seal
			@return the sealed snapshot and the classified differences
	*/
	SealSnapshot(ctx context.Context, snapshotID string) (models.Snapshot, diff.UpdateSummary, error)

	/*
		ListRecords list sequence records of a snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filters db.SequenceQueryFilter - entry listing filter
			@return list of records
	*/
	ListRecords(
		ctx context.Context, snapshotID string, filters db.SequenceQueryFilter,
	) ([]models.SequenceRecord, error)

	/*
		History list change-log entries of a snapshot

			@param ctx context.Context - execution context
			@param snapshotID string - the target snapshot
			@param filters db.ChangeEventQueryFilter - entry listing filter
			@return list of change-log entries
	*/
	History(
		ctx context.Context, snapshotID string, filters db.ChangeEventQueryFilter,
	) ([]models.ChangeEvent, error)
}

// LibraryCuratorParams parameters for defining a library curator
type LibraryCuratorParams struct {
	// Persistence database persistence client
	Persistence db.Client `validate:"required"`
	// Fetcher registry record fetcher
	Fetcher registry.Fetcher `validate:"required"`
	// Resolver taxonomy lineage resolver
	Resolver registry.TaxonomyResolver `validate:"required"`
	// Builder index builder invoked at sealing
	Builder IndexBuilder `validate:"required"`
	// WorkDir directory for materialized FASTA files and index outputs
	WorkDir string `validate:"required"`
	// Lenient downgrade missing-accession and conflict failures to warnings
	Lenient bool
}

// libraryCuratorImpl implements LibraryCurator
type libraryCuratorImpl struct {
	goutils.Component
	persistence db.Client
	fetcher     registry.Fetcher
	resolver    registry.TaxonomyResolver
	builder     IndexBuilder
	workDir     string
	lenient     bool

	// Per-key mutation locks. Snapshot keys serialize snapshot mutations,
	// library keys serialize sealing.
	locksGuard sync.Mutex
	locks      map[string]*sync.Mutex
}

/*
NewLibraryCurator define a new library curator

	@param params LibraryCuratorParams - curator parameters
	@return new curator
*/
func NewLibraryCurator(params LibraryCuratorParams) (LibraryCurator, error) {
	validate := validator.New()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("library curator params are not valid [%w]", err)
	}

	logTags := log.Fields{"package": "barrel", "module": "curator", "component": "library-curator"}

	return &libraryCuratorImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence: params.Persistence,
		fetcher:     params.Fetcher,
		resolver:    params.Resolver,
		builder:     params.Builder,
		workDir:     params.WorkDir,
		lenient:     params.Lenient,
	}, nil
}

// lockKey serialize operations sharing a key, returning the unlock callback
func (c *libraryCuratorImpl) lockKey(key string) func() {
	c.locksGuard.Lock()
	if c.locks == nil {
		c.locks = map[string]*sync.Mutex{}
	}
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	c.locksGuard.Unlock()

	lock.Lock()
	return lock.Unlock
}

// getUnlockedSnapshot fetch a snapshot, rejecting sealed ones
func getUnlockedSnapshot(
	ctx context.Context, dbClient db.Database, snapshotID string,
) (models.Snapshot, error) {
	snapshot, err := dbClient.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return models.Snapshot{}, err
	}
	if snapshot.Locked {
		return models.Snapshot{}, &SnapshotLockedError{SnapshotID: snapshotID}
	}
	return snapshot, nil
}

/*
CreateLibrary define a new reference library with an empty working snapshot

	@param ctx context.Context - execution context
	@param name string - library name
	@param description string - library description
	@param owner string - library owner identity
	@param public bool - whether the library is publicly visible
	@return the library and its working snapshot
*/
func (c *libraryCuratorImpl) CreateLibrary(
	ctx context.Context, name string, description string, owner string, public bool,
) (models.Library, models.Snapshot, error) {
	var library models.Library
	var snapshot models.Snapshot

	err := c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			if library, err = dbClient.DefineNewLibrary(
				ctx, name, description, owner, public,
			); err != nil {
				return err
			}
			snapshot, err = dbClient.DefineNewSnapshot(ctx, library, "Working snapshot")
			return err
		},
	)
	if err != nil {
		return models.Library{}, models.Snapshot{}, err
	}

	log.
		WithFields(c.GetLogTagsForContext(ctx)).
		WithField("library", library.ID).
		WithField("snapshot", snapshot.ID).
		Info("Defined new reference library")

	return library, snapshot, nil
}

// fetchForSnapshot fetch records, applying the lenient-mode policy for
// partially resolvable requests
func (c *libraryCuratorImpl) fetchForSnapshot(
	ctx context.Context, snapshotID string, accessions []string, term string,
) ([]models.SequenceRecord, error) {
	var fetched []models.SequenceRecord
	var err error
	if len(term) > 0 {
		fetched, err = c.fetcher.FetchBySearch(ctx, snapshotID, term)
	} else {
		fetched, err = c.fetcher.FetchByAccessions(ctx, snapshotID, accessions)
	}

	var missingErr *registry.InsufficientDataError
	if errors.As(err, &missingErr) && c.lenient {
		log.
			WithFields(c.GetLogTagsForContext(ctx)).
			WithField("missing_count", len(missingErr.MissingAccessions)).
			Warn("Proceeding without accessions the registry could not supply")
		return fetched, nil
	}
	if err != nil {
		return nil, err
	}
	return fetched, nil
}

// resolveLineages resolve taxonomy for freshly fetched records.
//
// Lineage nodes are shared and created idempotently, so node persistence runs
// outside the snapshot mutation transaction.
func (c *libraryCuratorImpl) resolveLineages(
	ctx context.Context, records []models.SequenceRecord,
) ([]models.SequenceRecord, error) {
	var resolved []models.SequenceRecord
	err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			resolved, err = c.resolver.ResolveLineages(ctx, dbClient, records)
			return err
		},
	)

	// An unreachable taxonomy service need not sink the fetched records;
	// lenient callers take them with unresolved lineages
	var taxErr *registry.TaxonomyConnectionError
	if errors.As(err, &taxErr) && c.lenient {
		log.
			WithFields(c.GetLogTagsForContext(ctx)).
			WithField("tax_id_count", len(taxErr.TaxIDs)).
			Warn("Proceeding with unresolved taxonomic lineages")
		return resolved, nil
	}
	return resolved, err
}

// insertWithChangeLog bulk insert records into a snapshot and log the
// addition. Reuses an active transaction when one is given; otherwise the
// insert and its change-log entry commit in a new one.
func (c *libraryCuratorImpl) insertWithChangeLog(
	ctx context.Context,
	activeDBClient db.Database,
	snapshotID string,
	records []models.SequenceRecord,
	term string,
) ([]models.SequenceRecord, error) {
	inserted := []models.SequenceRecord{}
	err := db.ActiveSessionWrapper(
		ctx, activeDBClient, c.persistence,
		func(ctx context.Context, dbClient db.Database) error {
			var err error
			if inserted, err = dbClient.BulkInsertSequences(
				ctx, snapshotID, records,
			); err != nil {
				return err
			}
			added := make([]string, 0, len(inserted))
			for _, record := range inserted {
				added = append(added, record.AccessionNumber)
			}
			_, err = dbClient.RecordChangeEvent(
				ctx, snapshotID, models.ChangeEventTypeSequencesAdded,
				models.ChangeEventSequencesAdded{Accessions: added, SearchTerm: term},
			)
			return err
		},
	)
	return inserted, err
}

// addRecords shared implementation of the two addition entry points
func (c *libraryCuratorImpl) addRecords(
	ctx context.Context,
	snapshotID string,
	accessions []string,
	term string,
	filter *db.SequenceViolationFilter,
) ([]models.SequenceRecord, error) {
	unlock := c.lockKey("snapshot/" + snapshotID)
	defer unlock()
	logTags := c.GetLogTagsForContext(ctx)

	// Reject sealed snapshots and accession conflicts before touching the
	// network
	if err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			if len(accessions) == 0 {
				return nil
			}
			existing, err := dbClient.ListSequencesOfSnapshot(
				ctx, snapshotID, db.SequenceQueryFilter{TargetAccessions: accessions},
			)
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				return nil
			}
			conflicts := make([]string, 0, len(existing))
			for _, record := range existing {
				conflicts = append(conflicts, record.AccessionNumber)
			}
			if !c.lenient {
				return &AccessionsAlreadyExistError{Accessions: conflicts}
			}
			log.
				WithFields(logTags).
				WithField("conflict_count", len(conflicts)).
				Warn("Skipping accessions already present in the snapshot")
			conflictSet := map[string]bool{}
			for _, accession := range conflicts {
				conflictSet[accession] = true
			}
			remaining := []string{}
			for _, accession := range accessions {
				if !conflictSet[accession] {
					remaining = append(remaining, accession)
				}
			}
			accessions = remaining
			return nil
		},
	); err != nil {
		return nil, err
	}

	if len(term) == 0 && len(accessions) == 0 {
		return []models.SequenceRecord{}, nil
	}

	fetched, err := c.fetchForSnapshot(ctx, snapshotID, accessions, term)
	if err != nil {
		return nil, err
	}

	// Search discovery can return records already in the snapshot; those are
	// skipped rather than treated as conflicts
	if len(term) > 0 && len(fetched) > 0 {
		candidates := make([]string, 0, len(fetched))
		for _, record := range fetched {
			candidates = append(candidates, record.AccessionNumber)
		}
		existingSet := map[string]bool{}
		if err := c.persistence.UseDatabase(
			ctx, func(ctx context.Context, dbClient db.Database) error {
				existing, err := dbClient.ListSequencesOfSnapshot(
					ctx, snapshotID, db.SequenceQueryFilter{TargetAccessions: candidates},
				)
				if err != nil {
					return err
				}
				for _, record := range existing {
					existingSet[record.AccessionNumber] = true
				}
				return nil
			},
		); err != nil {
			return nil, err
		}
		kept := make([]models.SequenceRecord, 0, len(fetched))
		for _, record := range fetched {
			if !existingSet[record.AccessionNumber] {
				kept = append(kept, record)
			}
		}
		fetched = kept
	}

	if len(fetched) == 0 {
		return []models.SequenceRecord{}, nil
	}

	resolved, err := c.resolveLineages(ctx, fetched)
	if err != nil {
		return nil, err
	}

	// Screen fetched records against the curation filter before they ever
	// reach the snapshot
	screenedTags := []string{}
	if filter != nil {
		kept := make([]models.SequenceRecord, 0, len(resolved))
		for _, record := range resolved {
			if filter.Matches(record) {
				screenedTags = append(screenedTags, record.VersionTag)
				continue
			}
			kept = append(kept, record)
		}
		resolved = kept
	}

	inserted := []models.SequenceRecord{}
	err = c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			// The snapshot may have been sealed between the precheck and now
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			if len(resolved) > 0 {
				var err error
				if inserted, err = c.insertWithChangeLog(
					ctx, dbClient, snapshotID, resolved, term,
				); err != nil {
					return err
				}
			}
			if filter != nil {
				if _, err := dbClient.RecordChangeEvent(
					ctx, snapshotID, models.ChangeEventTypeSequencesFiltered,
					models.ChangeEventSequencesFiltered{
						Criteria: filter.Describe(), Removed: screenedTags,
					},
				); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	log.
		WithFields(logTags).
		WithField("snapshot", snapshotID).
		WithField("added_count", len(inserted)).
		Info("Added sequence records to snapshot")

	return inserted, nil
}

/*
AddRecordsByAccession fetch records from the registry and add them to a snapshot.

When a violation filter is given, fetched records matching it are screened out
before insertion.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param accessions []string - accession numbers to add
	@param filter *db.SequenceViolationFilter - optional pre-insertion screen
	@return the added record entries
*/
func (c *libraryCuratorImpl) AddRecordsByAccession(
	ctx context.Context, snapshotID string, accessions []string,
	filter *db.SequenceViolationFilter,
) ([]models.SequenceRecord, error) {
	return c.addRecords(ctx, snapshotID, accessions, "", filter)
}

/*
AddRecordsBySearch discover records via free-text search and add them to a snapshot.

Records already present in the snapshot are skipped. When a violation filter is
given, fetched records matching it are screened out before insertion.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param term string - free-text search term
	@param filter *db.SequenceViolationFilter - optional pre-insertion screen
	@return the added record entries
*/
func (c *libraryCuratorImpl) AddRecordsBySearch(
	ctx context.Context, snapshotID string, term string,
	filter *db.SequenceViolationFilter,
) ([]models.SequenceRecord, error) {
	return c.addRecords(ctx, snapshotID, nil, term, filter)
}

/*
UpdateRecords refresh records of a snapshot from the registry

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param accessions []string - accession numbers to refresh; empty refreshes all
	@return the refreshed record entries
*/
func (c *libraryCuratorImpl) UpdateRecords(
	ctx context.Context, snapshotID string, accessions []string,
) ([]models.SequenceRecord, error) {
	unlock := c.lockKey("snapshot/" + snapshotID)
	defer unlock()
	logTags := c.GetLogTagsForContext(ctx)

	var existing []models.SequenceRecord
	if err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			var err error
			existing, err = dbClient.ListSequencesOfSnapshot(
				ctx, snapshotID, db.SequenceQueryFilter{},
			)
			return err
		},
	); err != nil {
		return nil, err
	}

	byAccession := map[string]models.SequenceRecord{}
	for _, record := range existing {
		byAccession[record.AccessionNumber] = record
	}

	// An empty accession set means refresh everything
	targets := accessions
	if len(targets) == 0 {
		targets = make([]string, 0, len(existing))
		for _, record := range existing {
			targets = append(targets, record.AccessionNumber)
		}
	} else {
		missing := []string{}
		for _, accession := range targets {
			if _, ok := byAccession[accession]; !ok {
				missing = append(missing, accession)
			}
		}
		if len(missing) > 0 {
			if !c.lenient {
				return nil, &AccessionsNotFoundError{Accessions: missing}
			}
			log.
				WithFields(logTags).
				WithField("missing_count", len(missing)).
				Warn("Skipping accessions not present in the snapshot")
			missingSet := map[string]bool{}
			for _, accession := range missing {
				missingSet[accession] = true
			}
			remaining := []string{}
			for _, accession := range targets {
				if !missingSet[accession] {
					remaining = append(remaining, accession)
				}
			}
			targets = remaining
		}
	}

	if len(targets) == 0 {
		return []models.SequenceRecord{}, nil
	}

	fetched, err := c.fetchForSnapshot(ctx, snapshotID, targets, "")
	if err != nil {
		return nil, err
	}

	// Fresh copies keep the identity of the records they refresh
	refreshed := make([]models.SequenceRecord, 0, len(fetched))
	for _, record := range fetched {
		before, ok := byAccession[record.AccessionNumber]
		if !ok {
			continue
		}
		record.ID = before.ID
		record.SnapshotID = before.SnapshotID
		record.CreatedAt = before.CreatedAt
		refreshed = append(refreshed, record)
	}

	if len(refreshed) == 0 {
		return []models.SequenceRecord{}, nil
	}

	resolved, err := c.resolveLineages(ctx, refreshed)
	if err != nil {
		return nil, err
	}

	err = c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			if err := dbClient.BulkUpdateSequences(ctx, resolved); err != nil {
				return err
			}
			touched := make([]string, 0, len(resolved))
			for _, record := range resolved {
				touched = append(touched, record.AccessionNumber)
			}
			_, err := dbClient.RecordChangeEvent(
				ctx, snapshotID, models.ChangeEventTypeSequencesUpdated,
				models.ChangeEventSequencesTouched{Accessions: touched},
			)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	log.
		WithFields(logTags).
		WithField("snapshot", snapshotID).
		WithField("updated_count", len(resolved)).
		Info("Refreshed sequence records of snapshot")

	return resolved, nil
}

/*
DeleteRecords remove records of a snapshot by accession number

Accessions without a matching record are ignored.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param accessions []string - accession numbers to remove
	@return number of records removed
*/
func (c *libraryCuratorImpl) DeleteRecords(
	ctx context.Context, snapshotID string, accessions []string,
) (int, error) {
	unlock := c.lockKey("snapshot/" + snapshotID)
	defer unlock()

	removedCount := 0
	err := c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			removed, err := dbClient.DeleteSequencesByAccession(ctx, snapshotID, accessions)
			if err != nil {
				return err
			}
			removedCount = len(removed)
			if removedCount == 0 {
				return nil
			}
			touched := make([]string, 0, len(removed))
			for _, record := range removed {
				touched = append(touched, record.AccessionNumber)
			}
			_, err = dbClient.RecordChangeEvent(
				ctx, snapshotID, models.ChangeEventTypeSequencesDeleted,
				models.ChangeEventSequencesTouched{Accessions: touched},
			)
			return err
		},
	)
	if err != nil {
		return 0, err
	}

	log.
		WithFields(c.GetLogTagsForContext(ctx)).
		WithField("snapshot", snapshotID).
		WithField("removed_count", removedCount).
		Info("Removed sequence records from snapshot")

	return removedCount, nil
}

/*
FilterRecords remove records of a snapshot violating curation rules.

The applied criteria are recorded in the change log even when no record
matched.

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filter db.SequenceViolationFilter - OR-combined violation criteria
	@return version tags of the removed records
*/
func (c *libraryCuratorImpl) FilterRecords(
	ctx context.Context, snapshotID string, filter db.SequenceViolationFilter,
) ([]string, error) {
	unlock := c.lockKey("snapshot/" + snapshotID)
	defer unlock()

	removedTags := []string{}
	err := c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			if _, err := getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			violating, err := dbClient.ListSequencesViolatingFilter(ctx, snapshotID, filter)
			if err != nil {
				return err
			}
			accessions := make([]string, 0, len(violating))
			for _, record := range violating {
				accessions = append(accessions, record.AccessionNumber)
				removedTags = append(removedTags, record.VersionTag)
			}
			if _, err := dbClient.DeleteSequencesByAccession(
				ctx, snapshotID, accessions,
			); err != nil {
				return err
			}
			_, err = dbClient.RecordChangeEvent(
				ctx, snapshotID, models.ChangeEventTypeSequencesFiltered,
				models.ChangeEventSequencesFiltered{
					Criteria: filter.Describe(), Removed: removedTags,
				},
			)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	log.
		WithFields(c.GetLogTagsForContext(ctx)).
		WithField("snapshot", snapshotID).
		WithField("removed_count", len(removedTags)).
		Info("Applied curation filter to snapshot")

	return removedTags, nil
}

/*
CloneSnapshot copy a snapshot's record set into a new unlocked snapshot

	@param ctx context.Context - execution context
	@param snapshotID string - the snapshot to copy
	@param description string - description of the new snapshot
	@return the new working snapshot
*/
func (c *libraryCuratorImpl) CloneSnapshot(
	ctx context.Context, snapshotID string, description string,
) (models.Snapshot, error) {
	var clone models.Snapshot
	err := c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			source, err := dbClient.GetSnapshot(ctx, snapshotID)
			if err != nil {
				return err
			}
			library, err := dbClient.GetLibrary(ctx, source.LibraryID)
			if err != nil {
				return err
			}
			if clone, err = dbClient.DefineNewSnapshot(ctx, library, description); err != nil {
				return err
			}
			records, err := dbClient.ListSequencesOfSnapshot(
				ctx, snapshotID, db.SequenceQueryFilter{},
			)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return nil
			}
			_, err = c.insertWithChangeLog(ctx, dbClient, clone.ID, records, "")
			return err
		},
	)
	if err != nil {
		return models.Snapshot{}, err
	}

	log.
		WithFields(c.GetLogTagsForContext(ctx)).
		WithField("source", snapshotID).
		WithField("clone", clone.ID).
		Info("Cloned snapshot into new working snapshot")

	return clone, nil
}

/*
ListRecords list sequence records of a snapshot

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filters db.SequenceQueryFilter - entry listing filter
	@return list of records
*/
func (c *libraryCuratorImpl) ListRecords(
	ctx context.Context, snapshotID string, filters db.SequenceQueryFilter,
) ([]models.SequenceRecord, error) {
	var records []models.SequenceRecord
	err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			records, err = dbClient.ListSequencesOfSnapshot(ctx, snapshotID, filters)
			return err
		},
	)
	return records, err
}

/*
History list change-log entries of a snapshot

	@param ctx context.Context - execution context
	@param snapshotID string - the target snapshot
	@param filters db.ChangeEventQueryFilter - entry listing filter
	@return list of change-log entries
*/
func (c *libraryCuratorImpl) History(
	ctx context.Context, snapshotID string, filters db.ChangeEventQueryFilter,
) ([]models.ChangeEvent, error) {
	var events []models.ChangeEvent
	err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			events, err = dbClient.ListChangeEvents(ctx, snapshotID, filters)
			return err
		},
	)
	return events, err
}
