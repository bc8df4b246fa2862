package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/barreldb/barrel/models"
	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// uncertainTaxonomyMarkers substrings whose presence in a record's lineage or
// definition marks the identification as provisional
var uncertainTaxonomyMarkers = []string{
	"cf.",
	"aff.",
	"sp.",
	"environment",
	"undescribed",
	"uncultured",
	"complex",
	"unclassified",
	"nom.",
	"nud.",
	"unidentif",
}

// lineageRankNames registry rank names mapped onto the tracked lineage levels
var lineageRankNames = map[string]models.TaxonomicRankENUMType{
	"superkingdom": models.TaxonomicRankSuperkingdom,
	"domain":       models.TaxonomicRankSuperkingdom,
	"kingdom":      models.TaxonomicRankKingdom,
	"phylum":       models.TaxonomicRankPhylum,
	"class":        models.TaxonomicRankClass,
	"order":        models.TaxonomicRankOrder,
	"family":       models.TaxonomicRankFamily,
	"genus":        models.TaxonomicRankGenus,
	"species":      models.TaxonomicRankSpecies,
}

// TaxonomyNodeStore durable arena for shared lineage nodes
type TaxonomyNodeStore interface {
	/*
		GetOrCreateTaxonomyNode fetch the lineage node for an external taxonomy ID,
		creating it if absent

			@param ctx context.Context - execution context
			@param taxID int64 - external taxonomy ID
			@param rank models.TaxonomicRankENUMType - lineage level
			@param scientificName string - scientific name of the taxon
			@returns the node entry
	*/
	GetOrCreateTaxonomyNode(
		ctx context.Context,
		taxID int64,
		rank models.TaxonomicRankENUMType,
		scientificName string,
	) (models.TaxonomyNode, error)
}

// TaxonomyResolver resolves external taxonomy IDs into lineage node
// references on sequence records.
type TaxonomyResolver interface {
	/*
		ResolveLineages resolve lineage node references for a batch of records.

		Records are updated in place. When the taxonomy service is unreachable,
		the records are returned untouched together with a
		*TaxonomyConnectionError; nothing already fetched is lost.

			@param ctx context.Context - execution context
			@param store TaxonomyNodeStore - durable arena for lineage nodes
			@param records []models.SequenceRecord - the records to resolve
			@return the records with lineage references filled in
	*/
	ResolveLineages(
		ctx context.Context, store TaxonomyNodeStore, records []models.SequenceRecord,
	) ([]models.SequenceRecord, error)
}

// TaxonomyResolverParams parameters for defining a taxonomy resolver
type TaxonomyResolverParams struct {
	// Client registry access client
	Client Client `validate:"required"`
	// Gate shared outbound request gate
	Gate RequestGate `validate:"required"`
	// CacheSize lineage cache capacity. Zero selects the default.
	CacheSize int
}

// taxonomyResolverImpl implements TaxonomyResolver
type taxonomyResolverImpl struct {
	goutils.Component
	client Client
	gate   RequestGate
	cache  *lru.Cache[int64, RawLineage]
	fetch  singleflight.Group
}

/*
NewTaxonomyResolver define a new taxonomy resolver

	@param params TaxonomyResolverParams - resolver parameters
	@return new resolver
*/
func NewTaxonomyResolver(params TaxonomyResolverParams) (TaxonomyResolver, error) {
	validate := validator.New()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("taxonomy resolver params are not valid [%w]", err)
	}

	if params.CacheSize == 0 {
		params.CacheSize = 4096
	}

	cache, err := lru.New[int64, RawLineage](params.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to define lineage cache [%w]", err)
	}

	logTags := log.Fields{"package": "barrel", "module": "registry", "component": "taxonomy-resolver"}

	return &taxonomyResolverImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		client: params.Client,
		gate:   params.Gate,
		cache:  cache,
	}, nil
}

// lookupLineages fetch uncached lineages from the taxonomy service and cache them
func (r *taxonomyResolverImpl) lookupLineages(ctx context.Context, taxIDs []int64) error {
	missing := []int64{}
	for _, taxID := range taxIDs {
		if _, ok := r.cache.Get(taxID); !ok {
			missing = append(missing, taxID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	// Concurrent resolutions of the same ID set collapse to one lookup
	rendered := make([]string, 0, len(missing))
	for _, taxID := range missing {
		rendered = append(rendered, strconv.FormatInt(taxID, 10))
	}
	flightKey := strings.Join(rendered, ",")

	_, err, _ := r.fetch.Do(flightKey, func() (interface{}, error) {
		if err := r.gate.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("lineage lookup interrupted awaiting request slot [%w]", err)
		}
		lineages, err := r.client.LookupLineage(ctx, missing)
		if err != nil {
			return nil, &TaxonomyConnectionError{TaxIDs: missing, Cause: err}
		}
		for _, lineage := range lineages {
			r.cache.Add(lineage.TaxID, lineage)
		}
		return nil, nil
	})
	return err
}

// applyLineage attach lineage node references from a resolved lineage
func (r *taxonomyResolverImpl) applyLineage(
	ctx context.Context,
	store TaxonomyNodeStore,
	record *models.SequenceRecord,
	lineage RawLineage,
) error {
	for _, level := range lineage.Levels {
		rank, tracked := lineageRankNames[strings.ToLower(level.Rank)]
		if !tracked {
			continue
		}
		node, err := store.GetOrCreateTaxonomyNode(ctx, level.TaxID, rank, level.ScientificName)
		if err != nil {
			return fmt.Errorf("failed to persist lineage node %d [%w]", level.TaxID, err)
		}
		if ref := record.TaxonNodeRef(rank); ref != nil {
			nodeID := node.TaxID
			*ref = &nodeID
		}
	}

	// The lineage usually stops above species level, so the species node
	// comes from the record's own taxonomy ID
	if record.TaxonSpeciesID == nil && len(lineage.ScientificName) > 0 {
		node, err := store.GetOrCreateTaxonomyNode(
			ctx, lineage.TaxID, models.TaxonomicRankSpecies, lineage.ScientificName,
		)
		if err != nil {
			return fmt.Errorf("failed to persist species node %d [%w]", lineage.TaxID, err)
		}
		nodeID := node.TaxID
		record.TaxonSpeciesID = &nodeID
	}

	return nil
}

// annotateUncertainty flag provisional identifications on the record
func annotateUncertainty(record *models.SequenceRecord) {
	haystack := strings.ToLower(record.Lineage + " " + record.Definition)
	for _, marker := range uncertainTaxonomyMarkers {
		if strings.Contains(haystack, marker) {
			record.AppendAnnotation(
				fmt.Sprintf("Identification may be uncertain: contains '%s'", marker),
			)
		}
	}
}

/*
ResolveLineages resolve lineage node references for a batch of records.

Records are updated in place. When the taxonomy service is unreachable,
the records are returned untouched together with a
*TaxonomyConnectionError; nothing already fetched is lost.

	@param ctx context.Context - execution context
	@param store TaxonomyNodeStore - durable arena for lineage nodes
	@param records []models.SequenceRecord - the records to resolve
	@return the records with lineage references filled in
*/
func (r *taxonomyResolverImpl) ResolveLineages(
	ctx context.Context, store TaxonomyNodeStore, records []models.SequenceRecord,
) ([]models.SequenceRecord, error) {
	logTags := r.GetLogTagsForContext(ctx)

	seen := map[int64]bool{}
	taxIDs := []int64{}
	for idx := range records {
		taxID := records[idx].TaxID
		if taxID > 0 && !seen[taxID] && records[idx].MissingTaxonomy() {
			seen[taxID] = true
			taxIDs = append(taxIDs, taxID)
		}
	}

	if len(taxIDs) > 0 {
		if err := r.lookupLineages(ctx, taxIDs); err != nil {
			return records, err
		}
	}

	resolved := 0
	for idx := range records {
		annotateUncertainty(&records[idx])

		if records[idx].TaxID == 0 || !records[idx].MissingTaxonomy() {
			continue
		}
		lineage, ok := r.cache.Get(records[idx].TaxID)
		if !ok {
			log.
				WithFields(logTags).
				WithField("accession", records[idx].AccessionNumber).
				WithField("tax_id", records[idx].TaxID).
				Warn("Taxonomy service returned no lineage for record")
			continue
		}
		if err := r.applyLineage(ctx, store, &records[idx], lineage); err != nil {
			return records, err
		}
		resolved++
	}

	log.
		WithFields(logTags).
		WithField("record_count", len(records)).
		WithField("resolved_count", resolved).
		Debug("Resolved taxonomic lineages")

	return records, nil
}
