package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
	"github.com/barreldb/barrel/models"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestDBTaxonomyNodeManagement verifies the behavior of
// `Database.GetOrCreateTaxonomyNode` and `Database.GetTaxonomyNode`.
func TestDBTaxonomyNodeManagement(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/barrel_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	// -------------------------------------------------------------------------
	// 1 – First resolution creates the node
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		node, err := dbClient.GetOrCreateTaxonomyNode(
			ctx, 7955, models.TaxonomicRankSpecies, "Danio rerio",
		)
		if err != nil {
			return err
		}
		assert.Equal(int64(7955), node.TaxID)
		assert.Equal(models.TaxonomicRankSpecies, node.Rank)
		assert.Equal("Danio rerio", node.ScientificName)
		return nil
	})
	assert.Nil(err)

	// 2 – A second resolution never overwrites the stored node
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		node, err := dbClient.GetOrCreateTaxonomyNode(
			ctx, 7955, models.TaxonomicRankGenus, "Danio",
		)
		if err != nil {
			return err
		}
		assert.Equal(models.TaxonomicRankSpecies, node.Rank)
		assert.Equal("Danio rerio", node.ScientificName)
		return nil
	})
	assert.Nil(err)

	// 3 – Direct fetch of known and unknown IDs
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		node, err := dbClient.GetTaxonomyNode(ctx, 7955)
		if err != nil {
			return err
		}
		assert.Equal("Danio rerio", node.ScientificName)
		_, err = dbClient.GetTaxonomyNode(ctx, 99999)
		assert.NotNil(err)
		return nil
	})
	assert.Nil(err)

	// 4 – A node with an unknown rank is rejected
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetOrCreateTaxonomyNode(
			ctx, 7954, models.TaxonomicRankENUMType("SUBSPECIES"), "Danio rerio rerio",
		)
		assert.NotNil(err)
		return nil
	})
	assert.Nil(err)
}
