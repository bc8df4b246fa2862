package curator_test

import (
	"context"
	"os"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel/curator"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestCuratorSealSnapshot verifies the sealing flow and the version
// progression across successive snapshots.
func TestCuratorSealSnapshot(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	fetcher := &stubFetcher{records: map[string]models.SequenceRecord{
		"AB000001": stubRecord("AB000001", "ACGTACGT"),
		"AB000002": stubRecord("AB000002", "ACGTACGA"),
		"AB000003": stubRecord("AB000003", "TTTTTTTT"),
	}}
	builder := &stubBuilder{}
	uut, _ := defineTestCurator(t, fetcher, builder, false)

	library, snap1, err := uut.CreateLibrary(utCtx, uuid.NewString(), "", "unit-test", false)
	assert.Nil(err)
	_, err = uut.AddRecordsByAccession(utCtx, snap1.ID, []string{"AB000001", "AB000002"}, nil)
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 1 – First seal of the library
	sealed, summary, err := uut.SealSnapshot(utCtx, snap1.ID)
	assert.Nil(err)
	assert.True(sealed.Locked)
	assert.Equal("1.0.0", sealed.VersionString())
	assert.Len(summary.Added, 2)

	// The materialized FASTA was handed to the build tool
	assert.Len(builder.requests, 1)
	content, err := os.ReadFile(builder.requests[0].FastaFile)
	assert.Nil(err)
	assert.Equal(">AB000001.1\nACGTACGT\n>AB000002.1\nACGTACGA\n", string(content))
	assert.Contains(builder.requests[0].Title, library.Name)

	// 2 – Sealing the same snapshot again is rejected
	_, _, err = uut.SealSnapshot(utCtx, snap1.ID)
	lockedErr := &curator.SnapshotLockedError{}
	assert.ErrorAs(err, &lockedErr)

	// 3 – Content change bumps the first version component
	snap2, err := uut.CloneSnapshot(utCtx, snap1.ID, "next release")
	assert.Nil(err)
	_, err = uut.DeleteRecords(utCtx, snap2.ID, []string{"AB000002"})
	assert.Nil(err)
	_, err = uut.AddRecordsByAccession(utCtx, snap2.ID, []string{"AB000003"}, nil)
	assert.Nil(err)

	sealed, summary, err = uut.SealSnapshot(utCtx, snap2.ID)
	assert.Nil(err)
	assert.Equal("2.0.0", sealed.VersionString())
	assert.Equal([]string{"AB000003"}, summary.Added)
	assert.Equal([]string{"AB000002"}, summary.Deleted)
	assert.Equal([]string{"AB000001"}, summary.Unchanged)

	// 4 – Republishing an identical record set bumps the last component
	snap3, err := uut.CloneSnapshot(utCtx, snap2.ID, "republish")
	assert.Nil(err)
	sealed, summary, err = uut.SealSnapshot(utCtx, snap3.ID)
	assert.Nil(err)
	assert.Equal("2.0.1", sealed.VersionString())
	assert.False(summary.HasContentChange())
	assert.False(summary.HasMetadataChange())
}

// TestCuratorSealSnapshotBuildFailure verifies a failed index build aborts the
// seal without locking the snapshot.
func TestCuratorSealSnapshotBuildFailure(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	fetcher := &stubFetcher{records: map[string]models.SequenceRecord{
		"AB000001": stubRecord("AB000001", "ACGTACGT"),
	}}
	builder := &stubBuilder{fail: true}
	uut, persistence := defineTestCurator(t, fetcher, builder, false)

	_, snapshot, err := uut.CreateLibrary(utCtx, uuid.NewString(), "", "unit-test", false)
	assert.Nil(err)
	_, err = uut.AddRecordsByAccession(utCtx, snapshot.ID, []string{"AB000001"}, nil)
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 1 – The build fails; the snapshot stays unlocked and editable
	_, _, err = uut.SealSnapshot(utCtx, snapshot.ID)
	buildErr := &curator.IndexBuildError{}
	assert.ErrorAs(err, &buildErr)

	err = persistence.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		s, err := dbClient.GetSnapshot(ctx, snapshot.ID)
		if err != nil {
			return err
		}
		assert.False(s.Locked)
		return nil
	})
	assert.Nil(err)

	// No seal event was logged
	events, err := uut.History(utCtx, snapshot.ID, db.ChangeEventQueryFilter{
		EventTypes: []models.ChangeEventTypeENUMType{models.ChangeEventTypeSnapshotLocked},
	})
	assert.Nil(err)
	assert.Empty(events)

	// 2 – After the tool recovers, sealing succeeds
	builder.fail = false
	sealed, _, err := uut.SealSnapshot(utCtx, snapshot.ID)
	assert.Nil(err)
	assert.True(sealed.Locked)
	assert.Equal("1.0.0", sealed.VersionString())
}
