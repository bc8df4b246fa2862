package models

// TaxonomicRankENUMType taxonomic rank ENUM value type
type TaxonomicRankENUMType string

const (
	// TaxonomicRankSuperkingdom lineage node at superkingdom level
	TaxonomicRankSuperkingdom TaxonomicRankENUMType = "SUPERKINGDOM"

	// TaxonomicRankKingdom lineage node at kingdom level
	TaxonomicRankKingdom TaxonomicRankENUMType = "KINGDOM"

	// TaxonomicRankPhylum lineage node at phylum level
	TaxonomicRankPhylum TaxonomicRankENUMType = "PHYLUM"

	// TaxonomicRankClass lineage node at class level
	TaxonomicRankClass TaxonomicRankENUMType = "CLASS"

	// TaxonomicRankOrder lineage node at order level
	TaxonomicRankOrder TaxonomicRankENUMType = "ORDER"

	// TaxonomicRankFamily lineage node at family level
	TaxonomicRankFamily TaxonomicRankENUMType = "FAMILY"

	// TaxonomicRankGenus lineage node at genus level
	TaxonomicRankGenus TaxonomicRankENUMType = "GENUS"

	// TaxonomicRankSpecies lineage node at species level
	TaxonomicRankSpecies TaxonomicRankENUMType = "SPECIES"
)

// AllTaxonomicRanks the eight lineage levels tracked per record, outermost first
func AllTaxonomicRanks() []TaxonomicRankENUMType {
	return []TaxonomicRankENUMType{
		TaxonomicRankSuperkingdom,
		TaxonomicRankKingdom,
		TaxonomicRankPhylum,
		TaxonomicRankClass,
		TaxonomicRankOrder,
		TaxonomicRankFamily,
		TaxonomicRankGenus,
		TaxonomicRankSpecies,
	}
}

// TaxonomyNode one node of an external-registry taxonomic lineage.
//
// Nodes are shared between sequence records. At most one node exists per
// external taxonomy ID; records reference nodes, they never own them.
type TaxonomyNode struct {
	// TaxID external taxonomy registry ID
	TaxID int64 `json:"tax_id" gorm:"column:tax_id;primaryKey;unique" validate:"required"`

	// Rank lineage level of this node
	Rank TaxonomicRankENUMType `json:"rank" gorm:"column:rank;not null" validate:"required,taxonomic_rank"`

	// ScientificName scientific name of the taxon
	ScientificName string `json:"scientific_name" gorm:"column:scientific_name;not null" validate:"required"`
}
