package barrel_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel"
	"github.com/barreldb/barrel/db"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestLibraryCuratorSetup exercises the `barrel.NewLibraryCurator` constructor
// and the local-only operations of the resulting curator. Registry-backed
// operations are covered by the curator package tests against test doubles.
func TestLibraryCuratorSetup(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	ctx := context.Background()

	// ------------------------------------------------------------------
	// 1. Create a temporary SQLite database
	// ------------------------------------------------------------------
	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	dbClient, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create tables
	assert.Nil(dbClient.RunSQLInTransaction(ctx, db.DefineTables))

	// ------------------------------------------------------------------
	// 2. Create the library curator
	// ------------------------------------------------------------------
	uut, err := barrel.NewLibraryCurator(
		db.GetSqliteDialector(testDB), logger.Error, barrel.CuratorConfig{
			RegistryBaseURL: "http://registry.internal/api",
			ToolName:        "barrel-ut",
			IndexBuildTool:  "/usr/bin/makeblastdb",
			WorkDir:         t.TempDir(),
		},
	)
	assert.Nil(err)

	// A registry base URL is mandatory
	_, err = barrel.NewLibraryCurator(
		db.GetSqliteDialector(testDB), logger.Error, barrel.CuratorConfig{
			ToolName:       "barrel-ut",
			IndexBuildTool: "/usr/bin/makeblastdb",
			WorkDir:        t.TempDir(),
		},
	)
	assert.NotNil(err)

	// ------------------------------------------------------------------
	// 3. Define a library and inspect its working snapshot
	// ------------------------------------------------------------------
	libraryName := uuid.NewString()
	library, snapshot, err := uut.CreateLibrary(ctx, libraryName, "e2e", "unit-test", false)
	assert.Nil(err)
	assert.Equal(libraryName, library.Name)
	assert.False(snapshot.Locked)
	assert.Equal(library.ID, snapshot.LibraryID)

	records, err := uut.ListRecords(ctx, snapshot.ID, db.SequenceQueryFilter{})
	assert.Nil(err)
	assert.Empty(records)

	events, err := uut.History(ctx, snapshot.ID, db.ChangeEventQueryFilter{})
	assert.Nil(err)
	assert.Len(events, 1)
}
