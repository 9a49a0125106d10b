package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// fakeS3 answers just enough of the S3 API for the calls ObjectStorage makes.
type fakeS3 struct {
	mu         sync.Mutex
	requests   []recordedRequest
	bucketMiss bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	miss := f.bucketMiss
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && miss:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.method+" "+r.path)
	}
	return out
}

func newFakeStorage(t *testing.T, fake *fakeS3) ObjectStorage {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	storage, err := NewMinioService(u.Host, "access", "secret", "us-east-1", false)
	require.NoError(t, err)
	return storage
}

func TestMinioService_UploadObject(t *testing.T) {
	fake := &fakeS3{}
	storage := newFakeStorage(t, fake)

	payload := "bucket,min_days\n0-7,0\n"
	err := storage.UploadObject(context.Background(), "reports", "exports/acme/aging.csv",
		strings.NewReader(payload), int64(len(payload)), "text/csv")
	require.NoError(t, err)

	require.NotEmpty(t, fake.requests)
	last := fake.requests[len(fake.requests)-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/reports/exports/acme/aging.csv", last.path)
	assert.Equal(t, "text/csv", last.contentType)
	assert.Contains(t, last.body, "0-7,0")
}

func TestMinioService_EnsureBucketExists(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		fake := &fakeS3{}
		storage := newFakeStorage(t, fake)

		require.NoError(t, storage.EnsureBucketExists(context.Background(), "reports"))
		assert.Contains(t, fake.methods(), "HEAD /reports/")
		assert.NotContains(t, fake.methods(), "PUT /reports/")
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake := &fakeS3{bucketMiss: true}
		storage := newFakeStorage(t, fake)

		require.NoError(t, storage.EnsureBucketExists(context.Background(), "reports"))
		assert.Contains(t, fake.methods(), "PUT /reports/")
	})
}

func TestMinioService_GetPresignedURL(t *testing.T) {
	storage, err := NewMinioService("files.internal:9000", "access", "secret", "us-east-1", false)
	require.NoError(t, err)

	link, err := storage.GetPresignedURL(context.Background(), "reports", "exports/acme/aging.csv", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "files.internal:9000", u.Host)
	assert.Equal(t, "/reports/exports/acme/aging.csv", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
