package httpc

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimdata/subgrib/pkg/auth"
	"github.com/openclimdata/subgrib/pkg/errors"
)

func newClient(t *testing.T, serverURL string, opts Options) *Client {
	t.Helper()
	if opts.RetrySleep == 0 {
		opts.RetrySleep = time.Millisecond
	}
	c, err := New(serverURL, opts)
	require.NoError(t, err)
	return c
}

func TestFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast/sfc/20170102/ens_cf.grib.index", r.URL.Path)
		assert.Equal(t, "subgrib/0.1", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"param":"2t"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{})
	body, err := c.FetchIndex(context.Background(), "forecast/sfc/20170102/ens_cf.grib.index")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"param":"2t"}`), body)
}

func TestFetchIndex_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{Retries: 3})
	body, err := c.FetchIndex(context.Background(), "a.index")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchIndex_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{Retries: 3})
	_, err := c.FetchIndex(context.Background(), "a.index")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRetrieval)
	assert.Equal(t, int32(3), calls.Load())

	var retErr *errors.RetrievalError
	require.True(t, stderrors.As(err, &retErr))
	assert.Equal(t, http.StatusServiceUnavailable, retErr.Status)
}

func TestFetchIndex_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{Retries: 3})
	_, err := c.FetchIndex(context.Background(), "a.index")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRetrieval)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRange(t *testing.T) {
	payload := []byte("0123456789abcdef")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bytes=4-9", r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(payload[4:10])
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{})
	var buf bytes.Buffer
	require.NoError(t, c.FetchRange(context.Background(), "a.grib", 4, 6, &buf))
	assert.Equal(t, []byte("456789"), buf.Bytes())
}

func TestFetchRange_ZeroLength(t *testing.T) {
	// A zero-length record never reaches the network; the range header it
	// would need does not exist.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{})
	var buf bytes.Buffer
	require.NoError(t, c.FetchRange(context.Background(), "a.grib", 42, 0, &buf))
	assert.Empty(t, buf.Bytes())
}

func TestFetchRange_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{})
	err := c.FetchRange(context.Background(), "a.grib", 0, 10, &bytes.Buffer{})
	require.Error(t, err)

	var retErr *errors.RetrievalError
	require.True(t, stderrors.As(err, &retErr))
	assert.Equal(t, http.StatusForbidden, retErr.Status)
	assert.Equal(t, int64(0), retErr.Offset)
	assert.Equal(t, int64(10), retErr.Length)
}

func TestFetchRange_LengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{})
	err := c.FetchRange(context.Background(), "a.grib", 0, 100, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRetrieval)
}

func TestAuthApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, Options{Auth: auth.BearerAuth{Token: "tok"}})
	_, err := c.FetchIndex(context.Background(), "a.index")
	require.NoError(t, err)
}
