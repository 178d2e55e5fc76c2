package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// NotFoundError represents a resource not found condition.
// Used by the mock client and checked by IsNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// IsNotFound returns true if the error represents a GitHub 404 Not Found response.
// It checks for both the real go-github ErrorResponse and the mock NotFoundError.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ClientInterface is the subset of the GitHub API used to publish artifacts
type ClientInterface interface {
	GetRelease(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error)
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error)
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, assetPath string) (*github.ReleaseAsset, error)
	DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error
}

var _ ClientInterface = (*Client)(nil)

// Client wraps the GitHub client with convenience methods
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub client authenticated with token
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	// oauth2.NewClient returns a client without timeout
	httpClient.Timeout = 5 * time.Minute

	return &Client{client: github.NewClient(httpClient)}, nil
}

// GetRelease fetches the release for tag
func (c *Client) GetRelease(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error) {
	release, _, err := c.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get release %s/%s@%s: %w", owner, repo, tag, err)
	}
	return release, nil
}

// CreateRelease creates a new release
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error) {
	created, _, err := c.client.Repositories.CreateRelease(ctx, owner, repo, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s/%s: %w", owner, repo, err)
	}
	return created, nil
}

// UploadReleaseAsset uploads the regular file at assetPath, named after its
// base name, to the release.
func (c *Client) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, assetPath string) (*github.ReleaseAsset, error) {
	info, err := os.Lstat(assetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access asset file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("asset path %s is not a regular file", assetPath)
	}

	file, err := os.Open(assetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset file: %w", err)
	}
	defer func() { _ = file.Close() }()

	opts := &github.UploadOptions{Name: filepath.Base(assetPath)}
	asset, _, err := c.client.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, opts, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload asset to release %d: %w", releaseID, err)
	}
	return asset, nil
}

// DeleteReleaseAsset removes an asset so a file with the same name can be
// uploaded again.
func (c *Client) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	if _, err := c.client.Repositories.DeleteReleaseAsset(ctx, owner, repo, assetID); err != nil {
		return fmt.Errorf("failed to delete release asset %d: %w", assetID, err)
	}
	return nil
}
