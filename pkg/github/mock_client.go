package github

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/go-github/github"
)

var _ ClientInterface = (*MockClient)(nil)

// MockClient is an in-memory ClientInterface for tests
type MockClient struct {
	Releases       map[string][]*github.RepositoryRelease // key: "owner/repo"
	UploadedAssets []string                               // asset paths passed to UploadReleaseAsset
	DeletedAssets  []int64
	ErrorToReturn  error
	UploadError    error // if non-nil, returned by UploadReleaseAsset instead of ErrorToReturn
}

// NewMockClient creates a new mock GitHub client
func NewMockClient() *MockClient {
	return &MockClient{
		Releases: make(map[string][]*github.RepositoryRelease),
	}
}

// GetRelease returns the release tagged tag, or a NotFoundError
func (m *MockClient) GetRelease(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error) {
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	key := fmt.Sprintf("%s/%s", owner, repo)
	for _, release := range m.Releases[key] {
		if release.GetTagName() == tag {
			return release, nil
		}
	}
	return nil, &NotFoundError{Message: fmt.Sprintf("release %s not found in %s", tag, key)}
}

// CreateRelease stores release with a synthetic ID and URL
func (m *MockClient) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error) {
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	key := fmt.Sprintf("%s/%s", owner, repo)
	id := int64(len(m.Releases[key]) + 1)
	release.ID = &id
	htmlURL := fmt.Sprintf("https://github.com/%s/releases/tag/%s", key, release.GetTagName())
	release.HTMLURL = &htmlURL

	m.Releases[key] = append(m.Releases[key], release)
	return release, nil
}

// UploadReleaseAsset records assetPath and attaches an asset to the stored release
func (m *MockClient) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, assetPath string) (*github.ReleaseAsset, error) {
	if m.UploadError != nil {
		return nil, m.UploadError
	}
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	m.UploadedAssets = append(m.UploadedAssets, assetPath)

	name := filepath.Base(assetPath)
	id := int64(1000 + len(m.UploadedAssets))
	url := fmt.Sprintf("https://github.com/%s/%s/releases/download/%d/%s", owner, repo, releaseID, name)
	asset := &github.ReleaseAsset{ID: &id, Name: &name, BrowserDownloadURL: &url}

	for _, release := range m.Releases[fmt.Sprintf("%s/%s", owner, repo)] {
		if release.GetID() == releaseID {
			release.Assets = append(release.Assets, *asset)
		}
	}
	return asset, nil
}

// DeleteReleaseAsset records assetID
func (m *MockClient) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	if m.ErrorToReturn != nil {
		return m.ErrorToReturn
	}
	m.DeletedAssets = append(m.DeletedAssets, assetID)
	return nil
}

// AddRelease adds a release to mock data
func (m *MockClient) AddRelease(owner, repo string, release *github.RepositoryRelease) {
	key := fmt.Sprintf("%s/%s", owner, repo)
	m.Releases[key] = append(m.Releases[key], release)
}
