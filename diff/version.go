package diff

import "fmt"

// Version the three-component snapshot version
type Version struct {
	// Genbank version component bumped on content-identity changes
	Genbank int
	// Major version component bumped on metadata-only changes
	Major int
	// Minor version component bumped on no-op republishing
	Minor int
}

// String render as "g.m.n"
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Genbank, v.Major, v.Minor)
}

// FirstVersion the version assigned when a library has no sealed snapshot yet
func FirstVersion() Version {
	return Version{Genbank: 1, Major: 0, Minor: 0}
}

/*
NextVersion compute the version for a new sealed snapshot.

Strict precedence ladder: content-identity changes bump the genbank
component, metadata-only changes bump the major component, and republishing
an identical record set bumps the minor component.

	@param previous Version - version of the most recently sealed snapshot
	@param summary UpdateSummary - classified differences since that snapshot
	@return the version to assign
*/
func NextVersion(previous Version, summary UpdateSummary) Version {
	if summary.HasContentChange() {
		return Version{Genbank: previous.Genbank + 1, Major: 0, Minor: 0}
	}
	if summary.HasMetadataChange() {
		return Version{Genbank: previous.Genbank, Major: previous.Major + 1, Minor: 0}
	}
	return Version{Genbank: previous.Genbank, Major: previous.Major, Minor: previous.Minor + 1}
}
