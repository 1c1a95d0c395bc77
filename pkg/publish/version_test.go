package publish_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/publish"
)

func TestNextVersion(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		releases  []publish.Release
		want      string
		prevPatch uint64
		source    publish.VersionSource
	}{
		{
			name:   "no releases",
			want:   "1.0.0",
			source: publish.SourceNoReleases,
		},
		{
			name:      "increments patch",
			releases:  []publish.Release{{Name: "2.3.5", CreatedAt: now}},
			want:      "2.3.6",
			prevPatch: 5,
			source:    publish.SourceRelease,
		},
		{
			name:     "non-numeric name",
			releases: []publish.Release{{Name: "vNext", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name:     "v prefix rejected",
			releases: []publish.Release{{Name: "v1.2.3", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name:     "pre-release rejected",
			releases: []publish.Release{{Name: "1.2.3-beta.1", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name:     "two components rejected",
			releases: []publish.Release{{Name: "1.2", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name:     "leading zero rejected",
			releases: []publish.Release{{Name: "1.02.3", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name:     "four components rejected",
			releases: []publish.Release{{Name: "1.2.3.4", CreatedAt: now}},
			want:     "1.0.0",
			source:   publish.SourceUnparseable,
		},
		{
			name: "newest by creation time",
			releases: []publish.Release{
				{Name: "1.0.9", CreatedAt: now.Add(-time.Hour)},
				{Name: "1.1.0", CreatedAt: now},
				{Name: "1.0.8", CreatedAt: now.Add(-2 * time.Hour)},
			},
			want:      "1.1.1",
			prevPatch: 0,
			source:    publish.SourceRelease,
		},
		{
			name:      "tag used when name is empty",
			releases:  []publish.Release{{TagName: "3.0.4", CreatedAt: now}},
			want:      "3.0.5",
			prevPatch: 4,
			source:    publish.SourceRelease,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := publish.NextVersion(tt.releases)
			assert.Equal(t, tt.want, plan.String())
			assert.Equal(t, tt.prevPatch, plan.PreviousPatch)
			assert.Equal(t, tt.source, plan.Source)
		})
	}
}

func TestLatestRelease_TiesKeepOrder(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	latest, ok := publish.LatestRelease([]publish.Release{
		{ID: 1, Name: "1.0.1", CreatedAt: at},
		{ID: 2, Name: "1.0.2", CreatedAt: at},
	})
	assert.True(t, ok)
	assert.Equal(t, int64(1), latest.ID)

	_, ok = publish.LatestRelease(nil)
	assert.False(t, ok)
}

func TestDescriptorVersion(t *testing.T) {
	assert.Equal(t, 7, publish.DescriptorVersion(5))
	assert.Equal(t, 2, publish.NextVersion(nil).DescriptorVersion())
}

func TestNextVersion_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		major := rapid.Uint64Range(0, 1000).Draw(t, "major")
		minor := rapid.Uint64Range(0, 1000).Draw(t, "minor")
		patch := rapid.Uint64Range(0, 100000).Draw(t, "patch")

		name := fmt.Sprintf("%d.%d.%d", major, minor, patch)
		plan := publish.NextVersion([]publish.Release{{Name: name, CreatedAt: time.Now()}})

		want := fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
		if plan.String() != want {
			t.Fatalf("next of %s: expected %s, got %s", name, want, plan.String())
		}
		if plan.PreviousPatch != patch {
			t.Fatalf("expected previous patch %d, got %d", patch, plan.PreviousPatch)
		}
		if plan.DescriptorVersion() != int(patch)+2 {
			t.Fatalf("expected descriptor version %d, got %d", patch+2, plan.DescriptorVersion())
		}
	})
}
