package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// ZipMediaType is the content type of uploaded archives
const ZipMediaType = "application/zip"

// Asset is an uploaded release asset
type Asset struct {
	ID   int64
	Name string
	Size int
	URL  string
}

// ReleaseService is the remote release API
type ReleaseService interface {
	ListReleases(ctx context.Context, owner, repo string) ([]Release, error)
	CreateRelease(ctx context.Context, owner, repo, version string) (Release, error)
	GetRelease(ctx context.Context, owner, repo string, id int64) (Release, error)
	UploadAsset(ctx context.Context, owner, repo string, releaseID int64, path, name string) (Asset, error)
}

// GitHubOptions configures the GitHub client
type GitHubOptions struct {
	// BaseURL and UploadURL point at a GitHub Enterprise instance. Both
	// empty means github.com.
	BaseURL   string
	UploadURL string
	// HTTPClient is the transport the token is layered on
	HTTPClient *http.Client
}

// GitHubService implements ReleaseService with the GitHub REST API
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates a client authenticated with token
func NewGitHubService(ctx context.Context, token string, opts GitHubOptions) (*GitHubService, error) {
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	if opts.BaseURL != "" {
		upload := opts.UploadURL
		if upload == "" {
			upload = opts.BaseURL
		}
		var err error
		client, err = client.WithEnterpriseURLs(opts.BaseURL, upload)
		if err != nil {
			return nil, fmt.Errorf("configure GitHub URLs: %w", err)
		}
	}

	return &GitHubService{client: client}, nil
}

// ListReleases returns every release of owner/repo, following pagination
func (s *GitHubService) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	opts := &github.ListOptions{PerPage: 100}
	var out []Release
	for {
		page, resp, err := s.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			out = append(out, fromGitHub(r))
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateRelease publishes a release whose tag and name are both version
func (s *GitHubService) CreateRelease(ctx context.Context, owner, repo, version string) (Release, error) {
	r, _, err := s.client.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName:    github.Ptr(version),
		Name:       github.Ptr(version),
		Draft:      github.Ptr(false),
		Prerelease: github.Ptr(false),
	})
	if err != nil {
		return Release{}, err
	}
	return fromGitHub(r), nil
}

// GetRelease fetches a release by id
func (s *GitHubService) GetRelease(ctx context.Context, owner, repo string, id int64) (Release, error) {
	r, _, err := s.client.Repositories.GetRelease(ctx, owner, repo, id)
	if err != nil {
		return Release{}, err
	}
	return fromGitHub(r), nil
}

// UploadAsset uploads the file at path as a zip asset named name
func (s *GitHubService) UploadAsset(ctx context.Context, owner, repo string, releaseID int64, path, name string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, err
	}
	defer f.Close()

	a, _, err := s.client.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID,
		&github.UploadOptions{Name: name, MediaType: ZipMediaType}, f)
	if err != nil {
		return Asset{}, err
	}
	return Asset{
		ID:   a.GetID(),
		Name: a.GetName(),
		Size: a.GetSize(),
		URL:  a.GetBrowserDownloadURL(),
	}, nil
}

func fromGitHub(r *github.RepositoryRelease) Release {
	return Release{
		ID:        r.GetID(),
		Name:      r.GetName(),
		TagName:   r.GetTagName(),
		CreatedAt: r.GetCreatedAt().Time,
	}
}
