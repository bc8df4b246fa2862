package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

// RawReference one bibliographic reference attached to a raw registry record
type RawReference struct {
	// Journal journal of the reference
	Journal string `json:"journal"`
	// Authors authors of the reference
	Authors string `json:"authors"`
	// Title title of the reference
	Title string `json:"title"`
}

// RawRecord one sequence record as returned by the external registry
type RawRecord struct {
	// Accession stable record identifier
	Accession string `json:"accession"`
	// VersionTag the accession.version identifier of this revision
	VersionTag string `json:"version"`
	// Definition the record definition line
	Definition string `json:"definition"`
	// Sequence raw sequence payload; empty when the registry holds no sequence
	Sequence string `json:"sequence"`
	// Keywords record keyword list
	Keywords []string `json:"keywords"`
	// ModificationDate last registry modification date
	ModificationDate time.Time `json:"modification_date"`
	// References bibliographic references, most relevant first
	References []RawReference `json:"references"`
	// Lineage taxonomic lineage names, outermost first
	Lineage []string `json:"lineage"`
	// SourceQualifiers qualifier values of the record's source feature
	SourceQualifiers map[string][]string `json:"source_qualifiers"`
}

// SearchPreview result count of a free-text search before fetching any data
type SearchPreview struct {
	// Count total matching records
	Count int `json:"count"`
	// ContinuationToken opaque token for paginating through the result set
	ContinuationToken string `json:"continuation_token"`
}

// RawLineageLevel one level of a taxonomic lineage
type RawLineageLevel struct {
	// TaxID external taxonomy ID of this level
	TaxID int64 `json:"tax_id"`
	// Rank registry rank name of this level
	Rank string `json:"rank"`
	// ScientificName scientific name of this level
	ScientificName string `json:"scientific_name"`
}

// RawLineage the resolved lineage of one external taxonomy ID
type RawLineage struct {
	// TaxID the external taxonomy ID this lineage belongs to
	TaxID int64 `json:"tax_id"`
	// ScientificName scientific name of the taxon itself
	ScientificName string `json:"scientific_name"`
	// Levels the lineage levels, outermost first
	Levels []RawLineageLevel `json:"levels"`
}

// Client low level access to the external sequence registry.
//
// All three lookup families count against the same request budget; callers
// must hold a RequestGate slot before invoking any of them.
type Client interface {
	/*
		LookupByIDs fetch raw records for a batch of accession identifiers

			@param ctx context.Context - execution context
			@param accessions []string - accession identifiers
			@return raw records known to the registry
	*/
	LookupByIDs(ctx context.Context, accessions []string) ([]RawRecord, error)

	/*
		Search run a free-text search, returning only the match count and a
		continuation token

			@param ctx context.Context - execution context
			@param term string - free-text search term
			@return search preview
	*/
	Search(ctx context.Context, term string) (SearchPreview, error)

	/*
		FetchSearchPage fetch one page of a prior search's result set

			@param ctx context.Context - execution context
			@param token string - continuation token from Search
			@param offset int - starting index within the result set
			@param limit int - page size
			@return raw records of the page
	*/
	FetchSearchPage(ctx context.Context, token string, offset, limit int) ([]RawRecord, error)

	/*
		LookupLineage resolve taxonomic lineages for a batch of taxonomy IDs

			@param ctx context.Context - execution context
			@param taxIDs []int64 - external taxonomy IDs
			@return lineage per resolvable ID
	*/
	LookupLineage(ctx context.Context, taxIDs []int64) ([]RawLineage, error)
}

// HTTPClientParams parameters for defining a registry HTTP client
type HTTPClientParams struct {
	// BaseURL registry endpoint base URL
	BaseURL string `validate:"required,url"`
	// ToolName client identity reported to the registry
	ToolName string `validate:"required"`
	// RequestTimeout per-request timeout
	RequestTimeout time.Duration
}

// httpClient implements Client over the registry's HTTP JSON endpoints
type httpClient struct {
	goutils.Component
	params HTTPClientParams
	client *http.Client
}

/*
NewHTTPClient define a registry client speaking the registry's HTTP JSON API

	@param params HTTPClientParams - client parameters
	@return new registry client
*/
func NewHTTPClient(params HTTPClientParams) (Client, error) {
	validate := validator.New()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("registry HTTP client params are not valid [%w]", err)
	}

	if params.RequestTimeout == 0 {
		params.RequestTimeout = time.Minute
	}

	logTags := log.Fields{"package": "barrel", "module": "registry", "component": "http-client"}

	return &httpClient{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		params: params,
		client: &http.Client{Timeout: params.RequestTimeout},
	}, nil
}

// getJSON issue a GET request and decode the JSON response body
func (c *httpClient) getJSON(
	ctx context.Context, path string, query url.Values, result interface{},
) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.params.BaseURL, path, query.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build registry request [%w]", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.params.ToolName)

	log.WithFields(c.LogTags).WithField("path", path).Debug("Issuing registry request")
	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("registry request failed [%w]", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("registry responded with status %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse registry response [%w]", err)
	}

	return nil
}

/*
LookupByIDs fetch raw records for a batch of accession identifiers

	@param ctx context.Context - execution context
	@param accessions []string - accession identifiers
	@return raw records known to the registry
*/
func (c *httpClient) LookupByIDs(ctx context.Context, accessions []string) ([]RawRecord, error) {
	query := url.Values{}
	query.Set("id", strings.Join(accessions, ","))

	var records []RawRecord
	if err := c.getJSON(ctx, "/records", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

/*
Search run a free-text search, returning only the match count and a
continuation token

	@param ctx context.Context - execution context
	@param term string - free-text search term
	@return search preview
*/
func (c *httpClient) Search(ctx context.Context, term string) (SearchPreview, error) {
	query := url.Values{}
	query.Set("term", term)

	var preview SearchPreview
	if err := c.getJSON(ctx, "/search", query, &preview); err != nil {
		return SearchPreview{}, err
	}
	return preview, nil
}

/*
FetchSearchPage fetch one page of a prior search's result set

	@param ctx context.Context - execution context
	@param token string - continuation token from Search
	@param offset int - starting index within the result set
	@param limit int - page size
	@return raw records of the page
*/
func (c *httpClient) FetchSearchPage(
	ctx context.Context, token string, offset, limit int,
) ([]RawRecord, error) {
	query := url.Values{}
	query.Set("token", token)
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var records []RawRecord
	if err := c.getJSON(ctx, "/search/page", query, &records); err != nil {
		return nil, err
	}
	return records, nil
}

/*
LookupLineage resolve taxonomic lineages for a batch of taxonomy IDs

	@param ctx context.Context - execution context
	@param taxIDs []int64 - external taxonomy IDs
	@return lineage per resolvable ID
*/
func (c *httpClient) LookupLineage(ctx context.Context, taxIDs []int64) ([]RawLineage, error) {
	rendered := make([]string, 0, len(taxIDs))
	for _, taxID := range taxIDs {
		rendered = append(rendered, strconv.FormatInt(taxID, 10))
	}

	query := url.Values{}
	query.Set("id", strings.Join(rendered, ","))

	var lineages []RawLineage
	if err := c.getJSON(ctx, "/lineage", query, &lineages); err != nil {
		return nil, err
	}
	return lineages, nil
}
