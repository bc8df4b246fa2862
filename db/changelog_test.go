package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/models"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestDBChangeLog verifies the behavior of `Database.RecordChangeEvent` and
// `Database.ListChangeEvents`.
func TestDBChangeLog(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	snapshot := defineTestSnapshot(t, uut)

	// -------------------------------------------------------------------------
	// 1 – Record addition and filter events
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		if _, err := dbClient.RecordChangeEvent(
			ctx, snapshot.ID, models.ChangeEventTypeSequencesAdded,
			models.ChangeEventSequencesAdded{
				Accessions: []string{"AB000001", "AB000002"}, SearchTerm: "12S ribosomal RNA",
			},
		); err != nil {
			return err
		}
		_, err := dbClient.RecordChangeEvent(
			ctx, snapshot.ID, models.ChangeEventTypeSequencesFiltered,
			models.ChangeEventSequencesFiltered{
				Criteria: []string{"Delete length < 100 bp"}, Removed: []string{},
			},
		)
		return err
	})
	assert.Nil(err)

	// 2 – Events come back in recording order, creation event first
	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListChangeEvents(ctx, snapshot.ID, db.ChangeEventQueryFilter{})
		if err != nil {
			return err
		}
		assert.Len(events, 3)
		assert.Equal(models.ChangeEventTypeSnapshotCreated, events[0].EventType)
		assert.Equal(models.ChangeEventTypeSequencesAdded, events[1].EventType)
		assert.Equal(models.ChangeEventTypeSequencesFiltered, events[2].EventType)

		parsed, err := events[1].ParseMetadata(validate)
		if err != nil {
			return err
		}
		added, ok := parsed.(models.ChangeEventSequencesAdded)
		assert.True(ok)
		assert.Equal([]string{"AB000001", "AB000002"}, added.Accessions)
		assert.Equal("12S ribosomal RNA", added.SearchTerm)
		return nil
	})
	assert.Nil(err)

	// 3 – Filter by event type
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListChangeEvents(ctx, snapshot.ID, db.ChangeEventQueryFilter{
			EventTypes: []models.ChangeEventTypeENUMType{models.ChangeEventTypeSequencesFiltered},
		})
		if err != nil {
			return err
		}
		assert.Len(events, 1)
		return nil
	})
	assert.Nil(err)

	// 4 – Metadata failing validation is rejected
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordChangeEvent(
			ctx, snapshot.ID, models.ChangeEventTypeSequencesAdded,
			models.ChangeEventSequencesAdded{},
		)
		assert.NotNil(err)
		return nil
	})
	assert.Nil(err)
}
