package curator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/diff"
	"github.com/barreldb/barrel/models"
)

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
func (c *libraryCuratorImpl) SealSnapshot(
	ctx context.Context, snapshotID string,
) (models.Snapshot, diff.UpdateSummary, error) {
	logTags := c.GetLogTagsForContext(ctx)

	var snapshot models.Snapshot
	var library models.Library
	var records []models.SequenceRecord
	var previousRecords []models.SequenceRecord
	var previousVersion *diff.Version

	if err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			if snapshot, err = getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			if library, err = dbClient.GetLibrary(ctx, snapshot.LibraryID); err != nil {
				return err
			}
			return nil
		},
	); err != nil {
		return models.Snapshot{}, diff.UpdateSummary{}, err
	}

	// Sealing serializes per library so version assignment stays monotonic
	unlock := c.lockKey("library/" + library.ID)
	defer unlock()
	unlockSnapshot := c.lockKey("snapshot/" + snapshotID)
	defer unlockSnapshot()

	if err := c.persistence.UseDatabase(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			// Re-read under the locks; another seal may have landed first
			var err error
			if snapshot, err = getUnlockedSnapshot(ctx, dbClient, snapshotID); err != nil {
				return err
			}
			if records, err = dbClient.ListSequencesOfSnapshot(
				ctx, snapshotID, db.SequenceQueryFilter{},
			); err != nil {
				return err
			}
			previous, err := dbClient.GetLatestSealedSnapshot(ctx, library.ID)
			if err != nil {
				return err
			}
			if previous == nil {
				return nil
			}
			previousVersion = &diff.Version{
				Genbank: previous.GenbankVersion,
				Major:   previous.MajorVersion,
				Minor:   previous.MinorVersion,
			}
			previousRecords, err = dbClient.ListSequencesOfSnapshot(
				ctx, previous.ID, db.SequenceQueryFilter{},
			)
			return err
		},
	); err != nil {
		return models.Snapshot{}, diff.UpdateSummary{}, err
	}

	summary := diff.Summarize(previousRecords, records)
	version := diff.FirstVersion()
	if previousVersion != nil {
		version = diff.NextVersion(*previousVersion, summary)
	}

	outputDir := filepath.Join(c.workDir, library.ID, version.String())
	fastaFile := filepath.Join(outputDir, "sequences.fasta")
	if err := ExportFasta(fastaFile, records); err != nil {
		return models.Snapshot{}, diff.UpdateSummary{}, err
	}

	// A failed build aborts the seal; the snapshot stays unlocked and editable
	if err := c.builder.Build(ctx, IndexBuildRequest{
		FastaFile:  fastaFile,
		OutputPath: filepath.Join(outputDir, "index"),
		Title:      fmt.Sprintf("%s %s", library.Name, version.String()),
	}); err != nil {
		return models.Snapshot{}, diff.UpdateSummary{}, err
	}

	var sealed models.Snapshot
	if err := c.persistence.UseDatabaseInTransaction(
		ctx, func(ctx context.Context, dbClient db.Database) error {
			var err error
			sealed, err = dbClient.SealSnapshot(
				ctx, snapshotID, version.Genbank, version.Major, version.Minor,
			)
			return err
		},
	); err != nil {
		return models.Snapshot{}, diff.UpdateSummary{}, err
	}

	log.
		WithFields(logTags).
		WithField("snapshot", snapshotID).
		WithField("version", sealed.VersionString()).
		WithField("record_count", len(records)).
		Info("Sealed snapshot")

	return sealed, summary, nil
}
