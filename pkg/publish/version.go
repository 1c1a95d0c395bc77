// Package publish archives packaged output and releases it on GitHub
package publish

import (
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is used when no usable release exists
const DefaultVersion = "1.0.0"

// Release is the subset of a remote release the publisher needs
type Release struct {
	ID        int64
	Name      string
	TagName   string
	CreatedAt time.Time
}

// VersionName returns the release name, falling back to the tag
func (r Release) VersionName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TagName
}

// VersionSource records where the next version came from
type VersionSource string

const (
	SourceRelease     VersionSource = "release"
	SourceNoReleases  VersionSource = "no-releases"
	SourceListFailed  VersionSource = "list-failed"
	SourceUnparseable VersionSource = "unparseable"
)

// VersionPlan is the outcome of next-version computation
type VersionPlan struct {
	Version       *semver.Version
	PreviousPatch uint64
	Source        VersionSource
	Latest        string
}

// String returns the version in major.minor.patch form
func (p VersionPlan) String() string {
	return p.Version.String()
}

// DescriptorVersion returns the integer plugin version for this plan
func (p VersionPlan) DescriptorVersion() int {
	return DescriptorVersion(p.PreviousPatch)
}

// LatestRelease returns the release with the newest creation time. Ties keep
// the order the API returned them in.
func LatestRelease(releases []Release) (Release, bool) {
	if len(releases) == 0 {
		return Release{}, false
	}
	sorted := make([]Release, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted[0], true
}

// ParseReleaseVersion accepts exactly major.minor.patch: no "v" prefix, no
// pre-release and no build metadata.
func ParseReleaseVersion(name string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(name)
	if err != nil {
		return nil, err
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return nil, fmt.Errorf("version %q must be plain major.minor.patch", name)
	}
	return v, nil
}

// NextVersion increments the patch of the latest release. Without a
// parseable latest release the plan falls back to 1.0.0 with a previous
// patch of 0.
func NextVersion(releases []Release) VersionPlan {
	fallback := VersionPlan{
		Version: semver.MustParse(DefaultVersion),
		Source:  SourceNoReleases,
	}

	latest, ok := LatestRelease(releases)
	if !ok {
		return fallback
	}

	fallback.Latest = latest.VersionName()
	current, err := ParseReleaseVersion(latest.VersionName())
	if err != nil {
		fallback.Source = SourceUnparseable
		return fallback
	}

	next := current.IncPatch()
	return VersionPlan{
		Version:       &next,
		PreviousPatch: current.Patch(),
		Source:        SourceRelease,
		Latest:        latest.VersionName(),
	}
}
