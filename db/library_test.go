package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/models"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestDBLibraryManagement verifies the behavior of `Database.DefineNewLibrary`,
// `Database.GetLibrary`, `Database.GetLibraryByName`, `Database.ListLibraries`,
// and `Database.DeleteLibrary`.
func TestDBLibraryManagement(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	// Create a unique temporary DB file for this test
	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	// Create a new DB connection
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create database tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	// -------------------------------------------------------------------------
	// 1 – Define a new reference library
	var lib1 models.Library
	lib1Name := uuid.NewString()
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		l, err := dbClient.DefineNewLibrary(ctx, lib1Name, "12S vertebrate barcodes", "unit-test", true)
		if err != nil {
			return err
		}
		lib1 = l
		return nil
	})
	assert.Nil(err)

	// 2 – Get back the library by ID and by name
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		l, err := dbClient.GetLibrary(ctx, lib1.ID)
		if err != nil {
			return err
		}
		assert.Equal(lib1Name, l.Name)
		assert.True(l.Public)
		l, err = dbClient.GetLibraryByName(ctx, lib1Name)
		if err != nil {
			return err
		}
		assert.Equal(lib1.ID, l.ID)
		return nil
	})
	assert.Nil(err)

	// 3 – A second library with the same name is rejected
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.DefineNewLibrary(ctx, lib1Name, "", "unit-test", false)
		assert.NotNil(err)
		return nil
	})
	assert.Nil(err)

	// 4 – Define a second library, then list
	var lib2 models.Library
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		l, err := dbClient.DefineNewLibrary(ctx, uuid.NewString(), "", "unit-test", false)
		if err != nil {
			return err
		}
		lib2 = l
		return nil
	})
	assert.Nil(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		libs, err := dbClient.ListLibraries(ctx, db.LibraryQueryFilter{})
		if err != nil {
			return err
		}
		assert.Len(libs, 2)
		return nil
	})
	assert.Nil(err)

	// 5 – Delete the second library
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		return dbClient.DeleteLibrary(ctx, lib2.ID)
	})
	assert.Nil(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetLibrary(ctx, lib2.ID)
		assert.NotNil(err)
		libs, err := dbClient.ListLibraries(ctx, db.LibraryQueryFilter{})
		if err != nil {
			return err
		}
		assert.Len(libs, 1)
		return nil
	})
	assert.Nil(err)
}

// TestDBSnapshotManagement verifies the behavior of `Database.DefineNewSnapshot`,
// `Database.SealSnapshot`, and `Database.GetLatestSealedSnapshot`.
func TestDBSnapshotManagement(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	var library models.Library
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		l, err := dbClient.DefineNewLibrary(ctx, uuid.NewString(), "", "unit-test", false)
		if err != nil {
			return err
		}
		library = l
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 1 – Define a snapshot; it starts unlocked and its creation is logged
	var snap1 models.Snapshot
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		s, err := dbClient.DefineNewSnapshot(ctx, library, "first pass")
		if err != nil {
			return err
		}
		snap1 = s
		return nil
	})
	assert.Nil(err)
	assert.False(snap1.Locked)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListChangeEvents(ctx, snap1.ID, db.ChangeEventQueryFilter{})
		if err != nil {
			return err
		}
		assert.Len(events, 1)
		assert.Equal(models.ChangeEventTypeSnapshotCreated, events[0].EventType)
		return nil
	})
	assert.Nil(err)

	// 2 – No sealed snapshot exists yet
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		latest, err := dbClient.GetLatestSealedSnapshot(ctx, library.ID)
		if err != nil {
			return err
		}
		assert.Nil(latest)
		return nil
	})
	assert.Nil(err)

	// 3 – Seal the snapshot; version and lock stick, and the seal is logged
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		sealed, err := dbClient.SealSnapshot(ctx, snap1.ID, 1, 0, 0)
		if err != nil {
			return err
		}
		assert.True(sealed.Locked)
		assert.Equal("1.0.0", sealed.VersionString())
		return nil
	})
	assert.Nil(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		s, err := dbClient.GetSnapshot(ctx, snap1.ID)
		if err != nil {
			return err
		}
		assert.True(s.Locked)
		assert.Equal("1.0.0", s.VersionString())
		events, err := dbClient.ListChangeEvents(ctx, snap1.ID, db.ChangeEventQueryFilter{
			EventTypes: []models.ChangeEventTypeENUMType{models.ChangeEventTypeSnapshotLocked},
		})
		if err != nil {
			return err
		}
		assert.Len(events, 1)
		return nil
	})
	assert.Nil(err)

	// 4 – Sealing again is rejected
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.SealSnapshot(ctx, snap1.ID, 2, 0, 0)
		assert.NotNil(err)
		return nil
	})
	assert.Nil(err)

	// 5 – Seal a second snapshot at a higher version; it becomes the latest
	var snap2 models.Snapshot
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		s, err := dbClient.DefineNewSnapshot(ctx, library, "second pass")
		if err != nil {
			return err
		}
		snap2 = s
		_, err = dbClient.SealSnapshot(ctx, snap2.ID, 2, 0, 0)
		return err
	})
	assert.Nil(err)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		latest, err := dbClient.GetLatestSealedSnapshot(ctx, library.ID)
		if err != nil {
			return err
		}
		assert.NotNil(latest)
		assert.Equal(snap2.ID, latest.ID)
		sealedOnly, err := dbClient.ListSnapshots(ctx, db.SnapshotQueryFilter{
			TargetLibraryID: &library.ID, LockedOnly: true,
		})
		if err != nil {
			return err
		}
		assert.Len(sealedOnly, 2)
		return nil
	})
	assert.Nil(err)
}
