package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redirectChain serves /hop/N, which redirects to /hop/N-1 until /hop/0
// answers 200.
func redirectChain(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if n == 0 {
			fmt.Fprint(w, "done")
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGet_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<rss/>")
	}))
	defer srv.Close()

	body, err := New(Options{}).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<rss/>", string(body))
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestClientGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := New(Options{}).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 410")
}

func TestClientGet_Redirects(t *testing.T) {
	srv := redirectChain(t)
	c := New(Options{MaxRedirects: 5})

	body, err := c.Get(context.Background(), srv.URL+"/hop/5")
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))

	_, err = c.Get(context.Background(), srv.URL+"/hop/6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect limit")
}

func TestClientGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := New(Options{Timeout: 100 * time.Millisecond}).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClientGet_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxBodyBytes+1)))
	}))
	defer srv.Close()

	_, err := New(Options{}).Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, resty.ErrResponseBodyTooLarge)
}

func TestClientGet_BodyAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxBodyBytes)))
	}))
	defer srv.Close()

	body, err := New(Options{}).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, maxBodyBytes)
}
