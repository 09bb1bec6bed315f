package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// githubStub fakes the subset of the GitHub Releases API the publisher
// uses.
type githubStub struct {
	mux *http.ServeMux

	release       *github.RepositoryRelease
	assets        []*github.ReleaseAsset
	created       int
	deletedAssets []int64
	uploads       []string
}

func newGitHubStub() *githubStub {
	s := &githubStub{mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /repos/me/my-extension/releases/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		if s.release == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(s.release)
	})
	s.mux.HandleFunc("POST /repos/me/my-extension/releases", func(w http.ResponseWriter, r *http.Request) {
		var release github.RepositoryRelease
		_ = json.NewDecoder(r.Body).Decode(&release)
		release.ID = github.Int64(1)
		release.HTMLURL = github.String("https://example.com/releases/" + release.GetTagName())
		s.release = &release
		s.created++
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(s.release)
	})
	s.mux.HandleFunc("GET /repos/me/my-extension/releases/1/assets", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.assets)
	})
	s.mux.HandleFunc("DELETE /repos/me/my-extension/releases/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		_, _ = fmt.Sscan(r.PathValue("id"), &id)
		s.deletedAssets = append(s.deletedAssets, id)
		w.WriteHeader(http.StatusNoContent)
	})
	s.mux.HandleFunc("POST /repos/me/my-extension/releases/1/assets", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		s.uploads = append(s.uploads, name)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&github.ReleaseAsset{
			ID:                 github.Int64(99),
			Name:               github.String(name),
			BrowserDownloadURL: github.String("https://example.com/download/" + name),
		})
	})

	return s
}

func (s *githubStub) publisher(t *testing.T) (*GitHubPublisher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(s.mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	client.UploadURL = base

	return NewGitHubPublisherWithClient(client), server
}

func TestGitHubPublisher_CreatesReleaseAndUploads(t *testing.T) {
	stub := newGitHubStub()
	publisher, _ := stub.publisher(t)
	art := testArtifact(t, "archive content")

	result, err := publisher.Publish(context.Background(), &Options{
		Tag:      "v1.12",
		Owner:    "me",
		Repo:     "my-extension",
		Artifact: art,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.created, "release should be created once")
	assert.Equal(t, "v1.12", stub.release.GetTagName())
	assert.Equal(t, []string{"my-extension.zip"}, stub.uploads)
	assert.False(t, result.Replaced)
	assert.Equal(t, "https://example.com/download/my-extension.zip", result.AssetURL)
	assert.Equal(t, "https://example.com/releases/v1.12", result.ReleaseURL)
}

func TestGitHubPublisher_ReusesExistingRelease(t *testing.T) {
	stub := newGitHubStub()
	stub.release = &github.RepositoryRelease{
		ID:      github.Int64(1),
		TagName: github.String("v1.12"),
		HTMLURL: github.String("https://example.com/releases/v1.12"),
	}
	publisher, _ := stub.publisher(t)
	art := testArtifact(t, "archive content")

	_, err := publisher.Publish(context.Background(), &Options{
		Tag:      "v1.12",
		Owner:    "me",
		Repo:     "my-extension",
		Artifact: art,
	})
	require.NoError(t, err)

	assert.Zero(t, stub.created, "existing release must be reused")
	assert.Equal(t, []string{"my-extension.zip"}, stub.uploads)
}

func TestGitHubPublisher_DuplicateAssetRejectedWithoutOverwrite(t *testing.T) {
	stub := newGitHubStub()
	stub.release = &github.RepositoryRelease{ID: github.Int64(1), TagName: github.String("v1.12")}
	stub.assets = []*github.ReleaseAsset{
		{ID: github.Int64(7), Name: github.String("my-extension.zip")},
	}
	publisher, _ := stub.publisher(t)
	art := testArtifact(t, "archive content")

	_, err := publisher.Publish(context.Background(), &Options{
		Tag:      "v1.12",
		Owner:    "me",
		Repo:     "my-extension",
		Artifact: art,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already attached")
	assert.Empty(t, stub.uploads, "nothing may be uploaded on conflict")
	assert.Empty(t, stub.deletedAssets)
}

func TestGitHubPublisher_OverwriteReplacesAsset(t *testing.T) {
	stub := newGitHubStub()
	stub.release = &github.RepositoryRelease{ID: github.Int64(1), TagName: github.String("v1.12")}
	stub.assets = []*github.ReleaseAsset{
		{ID: github.Int64(7), Name: github.String("my-extension.zip")},
		{ID: github.Int64(8), Name: github.String("unrelated.tar.gz")},
	}
	publisher, _ := stub.publisher(t)
	art := testArtifact(t, "archive content")

	result, err := publisher.Publish(context.Background(), &Options{
		Tag:       "v1.12",
		Owner:     "me",
		Repo:      "my-extension",
		Artifact:  art,
		Overwrite: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{7}, stub.deletedAssets, "only the colliding asset is deleted")
	assert.Equal(t, []string{"my-extension.zip"}, stub.uploads)
	assert.True(t, result.Replaced)
}
