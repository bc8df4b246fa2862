package models

import (
	"strings"
	"time"
)

// SequenceRecord one accession-identified sequence entry within a snapshot.
//
// Identity is by accession number within a snapshot; the version tag
// distinguishes revisions of the same accession over time at the external
// registry. Records belong to exactly one snapshot. Carrying a record into
// another snapshot always means copying it, never re-parenting.
type SequenceRecord struct {
	// ID record entry ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required,uuid_rfc4122"`

	// SnapshotID the snapshot this record belongs to
	SnapshotID string `json:"snapshot_id" gorm:"column:snapshot_id;not null;uniqueIndex:idx_snapshot_accession" validate:"required,uuid_rfc4122"`

	// AccessionNumber stable identifier at the external registry
	AccessionNumber string `json:"accession_number" gorm:"column:accession_number;not null;uniqueIndex:idx_snapshot_accession" validate:"required"`
	// VersionTag the accession.version identifier; changes when the registry revises the record
	VersionTag string `json:"version_tag" gorm:"column:version_tag;not null" validate:"required"`

	// Definition the record definition line
	Definition string `json:"definition" gorm:"column:definition"`
	// DNASequence raw sequence payload
	DNASequence string `json:"dna_sequence" gorm:"column:dna_sequence"`

	// Organism scientific name of the source organism
	Organism string `json:"organism" gorm:"column:organism"`
	// Organelle organelle of the source
	Organelle string `json:"organelle" gorm:"column:organelle"`
	// Isolate isolate of the source specimen
	Isolate string `json:"isolate" gorm:"column:isolate"`
	// Country origin country of the source specimen
	Country string `json:"country" gorm:"column:country"`
	// SpecimenVoucher specimen voucher of the source specimen
	SpecimenVoucher string `json:"specimen_voucher" gorm:"column:specimen_voucher"`
	// LatLon latitude and longitude from which the specimen originated
	LatLon string `json:"lat_lon" gorm:"column:lat_lon"`
	// TypeMaterial specimen type of the source
	TypeMaterial string `json:"type_material" gorm:"column:type_material"`

	// Journal journal of the first bibliographic reference
	Journal string `json:"journal" gorm:"column:journal"`
	// Authors authors of the first bibliographic reference
	Authors string `json:"authors" gorm:"column:authors"`
	// Title title of the first bibliographic reference
	Title string `json:"title" gorm:"column:title"`

	// Keywords comma-joined keyword list from the raw record
	Keywords string `json:"keywords" gorm:"column:keywords"`
	// ModificationDate last modification date reported by the registry
	ModificationDate time.Time `json:"modification_date" gorm:"column:modification_date"`

	// TaxID external taxonomy cross-reference ID, zero when absent
	TaxID int64 `json:"tax_id" gorm:"column:tax_id"`
	// Lineage comma-joined lineage string from the raw record
	Lineage string `json:"lineage" gorm:"column:lineage"`

	// Resolved lineage node references, nil until taxonomy resolution ran
	TaxonSuperkingdomID *int64 `json:"taxon_superkingdom_id" gorm:"column:taxon_superkingdom_id"`
	TaxonKingdomID      *int64 `json:"taxon_kingdom_id" gorm:"column:taxon_kingdom_id"`
	TaxonPhylumID       *int64 `json:"taxon_phylum_id" gorm:"column:taxon_phylum_id"`
	TaxonClassID        *int64 `json:"taxon_class_id" gorm:"column:taxon_class_id"`
	TaxonOrderID        *int64 `json:"taxon_order_id" gorm:"column:taxon_order_id"`
	TaxonFamilyID       *int64 `json:"taxon_family_id" gorm:"column:taxon_family_id"`
	TaxonGenusID        *int64 `json:"taxon_genus_id" gorm:"column:taxon_genus_id"`
	TaxonSpeciesID      *int64 `json:"taxon_species_id" gorm:"column:taxon_species_id"`

	// Annotations newline-joined auto-annotation comments attached to the record
	Annotations string `json:"annotations" gorm:"column:annotations"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// AmbiguousBaseCount number of symbols outside the canonical four-base
// alphabet (A, C, G, T), case-insensitive.
func (r SequenceRecord) AmbiguousBaseCount() int {
	count := 0
	for _, symbol := range strings.ToUpper(r.DNASequence) {
		switch symbol {
		case 'A', 'C', 'G', 'T':
		default:
			count++
		}
	}
	return count
}

// TaxonNodeRef the resolved lineage node reference for the given rank
func (r *SequenceRecord) TaxonNodeRef(rank TaxonomicRankENUMType) **int64 {
	switch rank {
	case TaxonomicRankSuperkingdom:
		return &r.TaxonSuperkingdomID
	case TaxonomicRankKingdom:
		return &r.TaxonKingdomID
	case TaxonomicRankPhylum:
		return &r.TaxonPhylumID
	case TaxonomicRankClass:
		return &r.TaxonClassID
	case TaxonomicRankOrder:
		return &r.TaxonOrderID
	case TaxonomicRankFamily:
		return &r.TaxonFamilyID
	case TaxonomicRankGenus:
		return &r.TaxonGenusID
	case TaxonomicRankSpecies:
		return &r.TaxonSpeciesID
	}
	return nil
}

// MissingTaxonomy whether any of the eight lineage levels is unresolved
func (r *SequenceRecord) MissingTaxonomy() bool {
	for _, rank := range AllTaxonomicRanks() {
		if ref := r.TaxonNodeRef(rank); ref == nil || *ref == nil {
			return true
		}
	}
	return false
}

// AppendAnnotation attach an auto-annotation comment to the record
func (r *SequenceRecord) AppendAnnotation(comment string) {
	if len(r.Annotations) > 0 {
		r.Annotations = r.Annotations + "\n" + comment
	} else {
		r.Annotations = comment
	}
}
