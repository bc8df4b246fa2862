// Package registry - rate-limited external sequence registry access
package registry

import (
	"fmt"
	"strings"
)

// AccessionLimitExceededError more accessions requested than one operation allows
type AccessionLimitExceededError struct {
	// RequestedCount the number of accessions requested
	RequestedCount int
	// MaxCount the hard per-operation ceiling
	MaxCount int
}

// Error implement error
func (e *AccessionLimitExceededError) Error() string {
	return fmt.Sprintf(
		"requested %d accessions, but at most %d are allowed per operation",
		e.RequestedCount,
		e.MaxCount,
	)
}

// ConnectionError failed to reach the sequence registry
type ConnectionError struct {
	// Accessions the accessions the failed request asked for
	Accessions []string
	// SearchTerm the free-text search term the failed request used, if any
	SearchTerm string
	// Cause the underlying transport failure
	Cause error
}

// Error implement error
func (e *ConnectionError) Error() string {
	if len(e.SearchTerm) > 0 {
		return fmt.Sprintf(
			"failed to reach sequence registry for term '%s': %s", e.SearchTerm, e.Cause,
		)
	}
	return fmt.Sprintf(
		"failed to reach sequence registry for accessions [%s]: %s",
		strings.Join(e.Accessions, ","),
		e.Cause,
	)
}

// Unwrap expose the underlying transport failure
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// InsufficientDataError the registry responded, but omitted requested accessions.
//
// This signals retired or mistyped identifiers rather than a transport
// problem. Any records that were returned remain usable by the caller.
type InsufficientDataError struct {
	// MissingAccessions the requested accessions absent from the response
	MissingAccessions []string
	// SearchTerm the free-text search term used, if any
	SearchTerm string
}

// Error implement error
func (e *InsufficientDataError) Error() string {
	if len(e.MissingAccessions) == 0 {
		return fmt.Sprintf("registry found no sequence data for term '%s'", e.SearchTerm)
	}
	return fmt.Sprintf(
		"registry response is missing %d requested accessions [%s]",
		len(e.MissingAccessions),
		strings.Join(e.MissingAccessions, ","),
	)
}

// TaxonomyConnectionError failed to reach the taxonomy lineage service
type TaxonomyConnectionError struct {
	// TaxIDs the external taxonomy IDs the failed lookup asked for
	TaxIDs []int64
	// Cause the underlying transport failure
	Cause error
}

// Error implement error
func (e *TaxonomyConnectionError) Error() string {
	return fmt.Sprintf(
		"failed to reach taxonomy service for %d lineage ids: %s", len(e.TaxIDs), e.Cause,
	)
}

// Unwrap expose the underlying transport failure
func (e *TaxonomyConnectionError) Unwrap() error {
	return e.Cause
}
