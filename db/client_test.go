package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestActiveSessionWrapper verifies transaction reuse of `ActiveSessionWrapper`.
func TestActiveSessionWrapper(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	// -------------------------------------------------------------------------
	// 1 – Without an active session, a new transaction is started
	libName1 := uuid.NewString()
	assert.Nil(db.ActiveSessionWrapper(
		utCtx, nil, uut, func(ctx context.Context, dbClient db.Database) error {
			_, err := dbClient.DefineNewLibrary(ctx, libName1, "", "unit-test", false)
			return err
		},
	))

	// -------------------------------------------------------------------------
	// 2 – An active session is reused as is
	libName2 := uuid.NewString()
	assert.Nil(uut.UseDatabaseInTransaction(
		utCtx, func(ctx context.Context, dbClient db.Database) error {
			return db.ActiveSessionWrapper(
				ctx, dbClient, uut, func(ctx context.Context, dbClient db.Database) error {
					_, err := dbClient.DefineNewLibrary(ctx, libName2, "", "unit-test", false)
					return err
				},
			)
		},
	))

	// Both libraries are visible afterwards
	assert.Nil(uut.UseDatabase(
		utCtx, func(ctx context.Context, dbClient db.Database) error {
			for _, name := range []string{libName1, libName2} {
				entry, err := dbClient.GetLibraryByName(ctx, name)
				if err != nil {
					return err
				}
				assert.Equal(name, entry.Name)
			}
			return nil
		},
	))
}
