package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v81/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stdinspector/internal/inspecterr"
)

func newFakeGitHub(t *testing.T) (*http.ServeMux, *github.Client) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	client.UploadURL = base
	return mux, client
}

func TestOpenGitHub_ListsAndReadsPinnedCommit(t *testing.T) {
	mux, client := newFakeGitHub(t)
	var treeCalls, blobCalls atomic.Int32

	mux.HandleFunc("/repos/acme/app", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"full_name":"acme/app","default_branch":"main"}`)
	})
	mux.HandleFunc("/repos/acme/app/commits/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testSHA)
	})
	mux.HandleFunc("/repos/acme/app/git/trees/"+testSHA, func(w http.ResponseWriter, r *http.Request) {
		treeCalls.Add(1)
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"sha":"t","truncated":false,"tree":[
			{"path":"Makefile","type":"blob","sha":"b1"},
			{"path":"ci","type":"tree","sha":"t2"},
			{"path":"ci/build.sh","type":"blob","sha":"b2"}
		]}`)
	})
	mux.HandleFunc("/repos/acme/app/git/blobs/b2", func(w http.ResponseWriter, r *http.Request) {
		blobCalls.Add(1)
		fmt.Fprint(w, "#!/bin/sh\npython3.11 -m build\n")
	})

	ctx := context.Background()
	repo, err := OpenGitHub(ctx, client, "https://github.com/acme/app", "")
	require.NoError(t, err)
	assert.Equal(t, "github:acme/app@0123456789ab", repo.Name())

	files, err := repo.Files(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makefile", "ci/build.sh"}, files.Sorted())

	for i := 0; i < 2; i++ {
		content, err := repo.ReadFile(ctx, "ci/build.sh")
		require.NoError(t, err)
		assert.Contains(t, string(content), "python3.11")
	}
	assert.Equal(t, int32(1), treeCalls.Load())
	assert.Equal(t, int32(1), blobCalls.Load())
}

func TestOpenGitHub_ErrorKinds(t *testing.T) {
	mux, client := newFakeGitHub(t)
	mux.HandleFunc("/repos/acme/locked", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})
	mux.HandleFunc("/repos/acme/app", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"full_name":"acme/app","default_branch":"main"}`)
	})
	mux.HandleFunc("/repos/acme/app/commits/nope", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"No commit found for SHA: nope"}`)
	})

	ctx := context.Background()

	_, err := OpenGitHub(ctx, client, "acme/locked", "")
	assert.ErrorIs(t, err, inspecterr.ErrAuthentication)

	_, err = OpenGitHub(ctx, client, "acme/missing", "")
	assert.ErrorIs(t, err, inspecterr.ErrAccess)

	_, err = OpenGitHub(ctx, client, "acme/app", "nope")
	assert.ErrorIs(t, err, inspecterr.ErrAccess)

	_, err = OpenGitHub(ctx, client, "just-a-name", "")
	assert.ErrorIs(t, err, inspecterr.ErrConfiguration)
}

func TestSplitGitHubRepository(t *testing.T) {
	tests := []struct {
		in          string
		owner, repo string
	}{
		{in: "acme/app", owner: "acme", repo: "app"},
		{in: "https://github.com/acme/app.git", owner: "acme", repo: "app"},
		{in: "https://ghe.example.com/acme/app/tree/main", owner: "acme", repo: "app"},
	}
	for _, tt := range tests {
		owner, repo, err := SplitGitHubRepository(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.owner, owner)
		assert.Equal(t, tt.repo, repo)
	}

	_, _, err := SplitGitHubRepository("")
	assert.ErrorIs(t, err, inspecterr.ErrConfiguration)
}
