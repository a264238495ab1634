package vcs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commitPath = "/api/v3/repos/ealvar3z/ttv/commits/main"

func setupGitHub(t *testing.T, timeout time.Duration) (*http.ServeMux, *GitHubClient) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewGitHubClientFromOptions(srv.URL, "test-token", timeout)
	require.NoError(t, err)
	return mux, client
}

func TestLatestCommit(t *testing.T) {
	mux, client := setupGitHub(t, time.Second)
	mux.HandleFunc(commitPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("Accept"), "application/vnd.github")
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"sha":"a1b2c3d4e5f60718293a4b5c6d7e8f9012345678","html_url":"https://github.com/ealvar3z/ttv/commit/a1b2c3d4","commit":{"message":"initial"}}`)
	})

	commit, err := client.LatestCommit(context.Background(), "ealvar3z", "ttv", "main")
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678", commit.SHA)
	assert.Equal(t, "https://github.com/ealvar3z/ttv/commit/a1b2c3d4", commit.HTMLURL)
	assert.Equal(t, "initial", commit.Message)
}

func TestLatestCommitMissingSHA(t *testing.T) {
	mux, client := setupGitHub(t, time.Second)
	mux.HandleFunc(commitPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"commit":{"message":"no sha here"}}`)
	})

	commit, err := client.LatestCommit(context.Background(), "ealvar3z", "ttv", "main")
	require.NoError(t, err)
	assert.Empty(t, commit.SHA)
}

func TestLatestCommitNotFound(t *testing.T) {
	mux, client := setupGitHub(t, time.Second)
	mux.HandleFunc(commitPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := client.LatestCommit(context.Background(), "ealvar3z", "ttv", "main")
	var ghErr *github.ErrorResponse
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, http.StatusNotFound, ghErr.Response.StatusCode)
}

func TestLatestCommitBadBody(t *testing.T) {
	mux, client := setupGitHub(t, time.Second)
	mux.HandleFunc(commitPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	})

	_, err := client.LatestCommit(context.Background(), "ealvar3z", "ttv", "main")
	assert.Error(t, err)
}

func TestLatestCommitTimeout(t *testing.T) {
	mux, client := setupGitHub(t, 50*time.Millisecond)
	mux.HandleFunc(commitPath, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := client.LatestCommit(context.Background(), "ealvar3z", "ttv", "main")
	assert.Error(t, err)
}

func TestParseGitHubRepo(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{in: "ealvar3z/ttv", wantOwner: "ealvar3z", wantRepo: "ttv"},
		{in: "github.com/ealvar3z/ttv", wantOwner: "ealvar3z", wantRepo: "ttv"},
		{in: "https://github.com/ealvar3z/ttv.git", wantOwner: "ealvar3z", wantRepo: "ttv"},
		{in: "git@github.com:ealvar3z/ttv.git", wantOwner: "ealvar3z", wantRepo: "ttv"},
		{in: "https://github.com/ealvar3z/ttv/", wantOwner: "ealvar3z", wantRepo: "ttv"},
		{in: "https://ghe.example.com/acme/widgets", wantOwner: "acme", wantRepo: "widgets"},
		{in: "ghe.example.com/acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{in: "git@ghe.example.com:acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{in: "ssh://git@ghe.example.com/acme/widgets.git", wantOwner: "acme", wantRepo: "widgets"},
		{in: "https://ghe.example.com/acme", wantErr: true},
		{in: "https://ghe.example.com", wantErr: true},
		{in: "https://github.com/acme/widgets/tree/main", wantErr: true},
		{in: "ttv", wantErr: true},
		{in: "/ttv", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			owner, repo, err := ParseGitHubRepo(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOwner, owner)
			assert.Equal(t, tc.wantRepo, repo)
		})
	}
}
