package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// GitHubPublisher publishes release assets through the GitHub Releases API.
type GitHubPublisher struct {
	client *github.Client
}

// NewGitHubPublisher creates a publisher authenticated with token.
func NewGitHubPublisher(token string) *GitHubPublisher {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	return &GitHubPublisher{client: github.NewClient(httpClient)}
}

// NewGitHubPublisherWithClient creates a publisher around an existing API
// client. Used by tests to point at a stub server.
func NewGitHubPublisherWithClient(client *github.Client) *GitHubPublisher {
	return &GitHubPublisher{client: client}
}

// Name returns the publisher name.
func (p *GitHubPublisher) Name() string {
	return "github"
}

// Publish attaches the artifact to the release for opts.Tag, creating the
// release if it does not exist. An existing asset with the same name is
// replaced when opts.Overwrite is set and rejected otherwise.
func (p *GitHubPublisher) Publish(ctx context.Context, opts *Options) (*Result, error) {
	release, err := p.ensureRelease(ctx, opts)
	if err != nil {
		return nil, err
	}

	replaced, err := p.clearExistingAsset(ctx, opts, release.GetID())
	if err != nil {
		return nil, err
	}

	f, err := os.Open(opts.Artifact.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	asset, _, err := p.client.Repositories.UploadReleaseAsset(
		ctx, opts.Owner, opts.Repo, release.GetID(),
		&github.UploadOptions{Name: opts.Artifact.Name}, f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload release asset: %w", err)
	}

	return &Result{
		ReleaseURL: release.GetHTMLURL(),
		AssetURL:   asset.GetBrowserDownloadURL(),
		Replaced:   replaced,
	}, nil
}

// ensureRelease returns the release for the tag, creating it when absent.
func (p *GitHubPublisher) ensureRelease(ctx context.Context, opts *Options) (*github.RepositoryRelease, error) {
	release, resp, err := p.client.Repositories.GetReleaseByTag(ctx, opts.Owner, opts.Repo, opts.Tag)
	if err == nil {
		return release, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("failed to look up release for %s: %w", opts.Tag, err)
	}

	release, _, err = p.client.Repositories.CreateRelease(ctx, opts.Owner, opts.Repo, &github.RepositoryRelease{
		TagName: github.String(opts.Tag),
		Name:    github.String(opts.Tag),
		Draft:   github.Bool(opts.Draft),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release for %s: %w", opts.Tag, err)
	}
	return release, nil
}

// clearExistingAsset deletes an asset with the artifact's name from the
// release, if present. The API rejects duplicate asset names, so overwrite
// means delete-then-upload.
func (p *GitHubPublisher) clearExistingAsset(ctx context.Context, opts *Options, releaseID int64) (bool, error) {
	listOpts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := p.client.Repositories.ListReleaseAssets(ctx, opts.Owner, opts.Repo, releaseID, listOpts)
		if err != nil {
			return false, fmt.Errorf("failed to list release assets: %w", err)
		}

		for _, asset := range assets {
			if asset.GetName() != opts.Artifact.Name {
				continue
			}
			if !opts.Overwrite {
				return false, fmt.Errorf("asset %s already attached to release %s (enable overwrite to replace it)", opts.Artifact.Name, opts.Tag)
			}
			if _, err := p.client.Repositories.DeleteReleaseAsset(ctx, opts.Owner, opts.Repo, asset.GetID()); err != nil {
				return false, fmt.Errorf("failed to delete existing asset: %w", err)
			}
			return true, nil
		}

		if resp.NextPage == 0 {
			return false, nil
		}
		listOpts.Page = resp.NextPage
	}
}
