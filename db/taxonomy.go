package db

import (
	"context"
	"fmt"

	"github.com/barreldb/barrel/models"
)

// ======================================================================================
// Taxonomy nodes

/*
GetOrCreateTaxonomyNode fetch the lineage node for an external taxonomy ID,
creating it if absent. Idempotent; the stored node is never overwritten, so a
second resolution of the same ID always returns the original node.

	@param ctx context.Context - execution context
	@param taxID int64 - external taxonomy ID
	@param rank models.TaxonomicRankENUMType - lineage level
	@param scientificName string - scientific name of the taxon
	@returns the node entry
*/
func (d *databaseImpl) GetOrCreateTaxonomyNode(
	_ context.Context,
	taxID int64,
	rank models.TaxonomicRankENUMType,
	scientificName string,
) (models.TaxonomyNode, error) {
	candidate := TaxonomyNodeDBEntry{
		TaxonomyNode: models.TaxonomyNode{
			TaxID:          taxID,
			Rank:           rank,
			ScientificName: scientificName,
		},
	}

	if err := d.validator.Struct(&candidate); err != nil {
		return models.TaxonomyNode{}, fmt.Errorf(
			"new taxonomy node %d is not valid [%w]", taxID, err,
		)
	}

	var entry TaxonomyNodeDBEntry
	if tmp := d.db.
		Where("tax_id = ?", taxID).
		Attrs(candidate).
		FirstOrCreate(&entry); tmp.Error != nil {
		return models.TaxonomyNode{}, fmt.Errorf(
			"get-or-create of taxonomy node %d failed [%w]", taxID, tmp.Error,
		)
	}

	return entry.TaxonomyNode, nil
}

/*
GetTaxonomyNode fetch a lineage node by external taxonomy ID

	@param ctx context.Context - execution context
	@param taxID int64 - external taxonomy ID
	@returns the node entry
*/
func (d *databaseImpl) GetTaxonomyNode(
	_ context.Context, taxID int64,
) (models.TaxonomyNode, error) {
	var entry TaxonomyNodeDBEntry
	if tmp := d.db.Where("tax_id = ?", taxID).First(&entry); tmp.Error != nil {
		return models.TaxonomyNode{}, fmt.Errorf(
			"failed to fetch taxonomy node %d [%w]", taxID, tmp.Error,
		)
	}

	return entry.TaxonomyNode, nil
}
