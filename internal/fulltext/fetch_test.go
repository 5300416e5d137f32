// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func testFetcher() *Fetcher {
	return NewFetcher(types.PDFConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "arxiv-digest-test/1.0"},
	})
}

func TestFetchTextHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, _, ok := testFetcher().FetchText(context.Background(), server.URL, ModeSections)
	assert.False(t, ok)
}

func TestFetchTextNotAPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>this is not a pdf</html>"))
	}))
	defer server.Close()

	_, _, ok := testFetcher().FetchText(context.Background(), server.URL, ModeFull)
	assert.False(t, ok)
}

func TestFetchTextSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	testFetcher().FetchText(context.Background(), server.URL, ModeSections)
	assert.Equal(t, "arxiv-digest-test/1.0", gotUA)
	assert.Equal(t, "application/pdf", gotAccept)
}

func TestExtractPagesGarbage(t *testing.T) {
	_, err := extractPages([]byte("definitely not a pdf"), 0)
	assert.Error(t, err)
}
