// Package curator - snapshot mutation, sealing, and index materialization
package curator

import (
	"fmt"
	"strings"
)

// SnapshotLockedError mutation attempted against a sealed snapshot
type SnapshotLockedError struct {
	// SnapshotID the sealed snapshot
	SnapshotID string
}

// Error implement error
func (e *SnapshotLockedError) Error() string {
	return fmt.Sprintf("snapshot %s is sealed and can not be modified", e.SnapshotID)
}

// AccessionsAlreadyExistError addition attempted for accessions already present
type AccessionsAlreadyExistError struct {
	// Accessions the conflicting accession numbers
	Accessions []string
}

// Error implement error
func (e *AccessionsAlreadyExistError) Error() string {
	return fmt.Sprintf(
		"%d accessions already exist in the snapshot [%s]",
		len(e.Accessions),
		strings.Join(e.Accessions, ","),
	)
}

// AccessionsNotFoundError update attempted for accessions absent from the snapshot
type AccessionsNotFoundError struct {
	// Accessions the unknown accession numbers
	Accessions []string
}

// Error implement error
func (e *AccessionsNotFoundError) Error() string {
	return fmt.Sprintf(
		"%d accessions are not present in the snapshot [%s]",
		len(e.Accessions),
		strings.Join(e.Accessions, ","),
	)
}

// IndexBuildError the external index build tool failed
type IndexBuildError struct {
	// Output combined tool output, for diagnostics
	Output string
	// Cause the underlying process failure
	Cause error
}

// Error implement error
func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build tool failed: %s", e.Cause)
}

// Unwrap expose the underlying process failure
func (e *IndexBuildError) Unwrap() error {
	return e.Cause
}
