package tester

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		_, _ = io.WriteString(w, `{"data":{"id":`+chi.URLParam(r, "id")+`,"q":"`+r.URL.Query().Get("q")+`"}}`)
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.Copy(w, r.Body)
	})
	r.Get("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=iso-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	})
	r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTransportSend(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(5*time.Second, nil)

	resp, err := tr.Send(context.Background(), models.RequestDescriptor{
		Method: "get",
		URL:    srv.URL + "/item/1001",
		Body:   map[string]any{"q": "demo"},
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.ErrorMessage)
	assert.Equal(t, 200, *resp.StatusCode)
	assert.Equal(t, "a, b", resp.Headers["X-Multi"])
	assert.NotNil(t, resp.ElapsedMS)
	assert.Equal(t, map[string]any{"data": map[string]any{"id": 1001.0, "q": "demo"}}, resp.ResponseJSON)
}

func TestHTTPTransportPostJSON(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(5*time.Second, nil)

	resp, err := tr.Send(context.Background(), models.RequestDescriptor{
		Method:  "POST",
		URL:     srv.URL + "/echo",
		Headers: map[string]string{"X-Token": "t-1"},
		Body:    map[string]any{"name": "demo"},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, http.StatusCreated, *resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "t-1", resp.Headers["X-Token"])
	assert.Equal(t, map[string]any{"name": "demo"}, resp.ResponseJSON)

	// a JSON string body goes out untouched
	resp, err = tr.Send(context.Background(), models.RequestDescriptor{
		Method: "POST",
		URL:    srv.URL + "/echo",
		Body:   `{"raw":true}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"raw":true}`, *resp.ResponseText)

	resp, err = tr.Send(context.Background(), models.RequestDescriptor{Method: "PUT", URL: srv.URL + "/echo"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusMethodNotAllowed, *resp.StatusCode)
}

func TestHTTPTransportNonJSONAndCharset(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(5*time.Second, nil)

	resp, err := tr.Send(context.Background(), models.RequestDescriptor{Method: "GET", URL: srv.URL + "/latin1"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "café", *resp.ResponseText)
	assert.Nil(t, resp.ResponseJSON)

	// non-2xx is still a successful send
	resp, err = tr.Send(context.Background(), models.RequestDescriptor{Method: "GET", URL: srv.URL + "/missing"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, http.StatusNotFound, *resp.StatusCode)
}

func TestHTTPTransportRejectsBadInput(t *testing.T) {
	tr := NewHTTPTransport(time.Second, nil)

	tests := []struct {
		name    string
		desc    models.RequestDescriptor
		errType string
		message string
	}{
		{"empty method", models.RequestDescriptor{URL: "http://example.com"}, models.ErrInvalidMethod, "method is required"},
		{"unknown method", models.RequestDescriptor{Method: "brew", URL: "http://example.com"}, models.ErrInvalidMethod, "unsupported method: BREW"},
		{"empty url", models.RequestDescriptor{Method: "GET", URL: "  "}, models.ErrInvalidURL, "url is required"},
		{"relative url", models.RequestDescriptor{Method: "GET", URL: "/just/a/path"}, models.ErrInvalidURL, "invalid url: /just/a/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tr.Send(context.Background(), tt.desc)
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.errType, resp.ErrorType)
			assert.Equal(t, tt.message, resp.ErrorMessage)
			assert.Nil(t, resp.StatusCode)
		})
	}
}

func TestHTTPTransportTimeout(t *testing.T) {
	srv := newTestServer(t)
	tr := NewHTTPTransport(5*time.Second, nil)

	resp, err := tr.Send(context.Background(), models.RequestDescriptor{
		Method:  "GET",
		URL:     srv.URL + "/slow",
		Timeout: 0.05,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrTimeout, resp.ErrorType)
}

func TestHTTPTransportConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	tr := NewHTTPTransport(time.Second, nil)
	resp, err := tr.Send(context.Background(), models.RequestDescriptor{Method: "GET", URL: "http://" + addr + "/"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrConnection, resp.ErrorType)
}
