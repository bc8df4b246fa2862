package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/barreldb/barrel/models"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMaxAccessionsPerOperation hard ceiling on accessions per fetch operation
	DefaultMaxAccessionsPerOperation = 1500

	// DefaultFetchBatchSize accessions requested per outbound registry call
	DefaultFetchBatchSize = 300
)

// Fetcher retrieves sequence records from the external registry, batched and
// rate limited.
type Fetcher interface {
	/*
		FetchByAccessions fetch sequence records for a set of accession numbers.

		When some accessions are unknown to the registry, the records that were
		found are returned together with an *InsufficientDataError naming the
		missing identifiers. Callers decide whether to proceed with the partial
		result.

			@param ctx context.Context - execution context
			@param snapshotID string - the snapshot the records will belong to
			@param accessions []string - accession numbers
			@return parsed sequence record entries
	*/
	FetchByAccessions(
		ctx context.Context, snapshotID string, accessions []string,
	) ([]models.SequenceRecord, error)

	/*
		FetchBySearch fetch sequence records matching a free-text search.

		The match count is checked against the per-operation ceiling before any
		record data is transferred.

			@param ctx context.Context - execution context
			@param snapshotID string - the snapshot the records will belong to
			@param term string - free-text search term
			@return parsed sequence record entries
	*/
	FetchBySearch(
		ctx context.Context, snapshotID string, term string,
	) ([]models.SequenceRecord, error)
}

// FetcherParams parameters for defining a registry fetcher
type FetcherParams struct {
	// Client registry access client
	Client Client `validate:"required"`
	// Gate shared outbound request gate
	Gate RequestGate `validate:"required"`
	// MaxAccessions per-operation accession ceiling. Zero selects the default.
	MaxAccessions int
	// BatchSize accessions per outbound registry call. Zero selects the default.
	BatchSize int
}

// fetcherImpl implements Fetcher
type fetcherImpl struct {
	goutils.Component
	client        Client
	gate          RequestGate
	maxAccessions int
	batchSize     int
}

/*
NewFetcher define a new registry fetcher

	@param params FetcherParams - fetcher parameters
	@return new fetcher
*/
func NewFetcher(params FetcherParams) (Fetcher, error) {
	validate := validator.New()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("registry fetcher params are not valid [%w]", err)
	}

	if params.MaxAccessions == 0 {
		params.MaxAccessions = DefaultMaxAccessionsPerOperation
	}
	if params.BatchSize == 0 {
		params.BatchSize = DefaultFetchBatchSize
	}

	logTags := log.Fields{"package": "barrel", "module": "registry", "component": "fetcher"}

	return &fetcherImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		client:        params.Client,
		gate:          params.Gate,
		maxAccessions: params.MaxAccessions,
		batchSize:     params.BatchSize,
	}, nil
}

// dedupAccessions drop duplicate and blank identifiers, preserving order
func dedupAccessions(accessions []string) []string {
	seen := map[string]bool{}
	unique := make([]string, 0, len(accessions))
	for _, accession := range accessions {
		trimmed := strings.TrimSpace(accession)
		if len(trimmed) == 0 || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		unique = append(unique, trimmed)
	}
	return unique
}

/*
FetchByAccessions fetch sequence records for a set of accession numbers.

When some accessions are unknown to the registry, the records that were
found are returned together with an *InsufficientDataError naming the
missing identifiers. Callers decide whether to proceed with the partial
result.

	@param ctx context.Context - execution context
	@param snapshotID string - the snapshot the records will belong to
	@param accessions []string - accession numbers
	@return parsed sequence record entries
*/
func (f *fetcherImpl) FetchByAccessions(
	ctx context.Context, snapshotID string, accessions []string,
) ([]models.SequenceRecord, error) {
	logTags := f.GetLogTagsForContext(ctx)

	unique := dedupAccessions(accessions)
	if len(unique) == 0 {
		return nil, fmt.Errorf("no accession numbers given to fetch")
	}
	if len(unique) > f.maxAccessions {
		return nil, &AccessionLimitExceededError{
			RequestedCount: len(unique), MaxCount: f.maxAccessions,
		}
	}

	rawRecords := make([]RawRecord, 0, len(unique))
	for start := 0; start < len(unique); start += f.batchSize {
		end := start + f.batchSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		if err := f.gate.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("fetch interrupted awaiting request slot [%w]", err)
		}

		log.
			WithFields(logTags).
			WithField("batch_size", len(batch)).
			Debug("Fetching accession batch from registry")
		fetched, err := f.client.LookupByIDs(ctx, batch)
		if err != nil {
			return nil, &ConnectionError{Accessions: batch, Cause: err}
		}
		rawRecords = append(rawRecords, fetched...)
	}

	// Registry responses identify entries by either form, so a request by
	// accession number may come back keyed by version tag
	returned := map[string]bool{}
	for _, entry := range rawRecords {
		returned[entry.Accession] = true
		returned[entry.VersionTag] = true
	}
	missing := []string{}
	for _, accession := range unique {
		if !returned[accession] {
			missing = append(missing, accession)
		}
	}

	parsed := ParseRawRecords(snapshotID, rawRecords)

	if len(missing) > 0 {
		log.
			WithFields(logTags).
			WithField("missing_count", len(missing)).
			Warn("Registry response omitted requested accessions")
		return parsed, &InsufficientDataError{MissingAccessions: missing}
	}

	return parsed, nil
}

/*
FetchBySearch fetch sequence records matching a free-text search.

The match count is checked against the per-operation ceiling before any
record data is transferred.

	@param ctx context.Context - execution context
	@param snapshotID string - the snapshot the records will belong to
	@param term string - free-text search term
	@return parsed sequence record entries
*/
func (f *fetcherImpl) FetchBySearch(
	ctx context.Context, snapshotID string, term string,
) ([]models.SequenceRecord, error) {
	logTags := f.GetLogTagsForContext(ctx)

	term = strings.TrimSpace(term)
	if len(term) == 0 {
		return nil, fmt.Errorf("no search term given to fetch")
	}

	if err := f.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("fetch interrupted awaiting request slot [%w]", err)
	}
	preview, err := f.client.Search(ctx, term)
	if err != nil {
		return nil, &ConnectionError{SearchTerm: term, Cause: err}
	}

	log.
		WithFields(logTags).
		WithField("term", term).
		WithField("match_count", preview.Count).
		Info("Registry search preview")

	if preview.Count > f.maxAccessions {
		return nil, &AccessionLimitExceededError{
			RequestedCount: preview.Count, MaxCount: f.maxAccessions,
		}
	}
	if preview.Count == 0 {
		return nil, &InsufficientDataError{SearchTerm: term}
	}

	rawRecords := make([]RawRecord, 0, preview.Count)
	for offset := 0; offset < preview.Count; offset += f.batchSize {
		if err := f.gate.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("fetch interrupted awaiting request slot [%w]", err)
		}
		page, err := f.client.FetchSearchPage(
			ctx, preview.ContinuationToken, offset, f.batchSize,
		)
		if err != nil {
			return nil, &ConnectionError{SearchTerm: term, Cause: err}
		}
		rawRecords = append(rawRecords, page...)
	}

	return ParseRawRecords(snapshotID, rawRecords), nil
}
