package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSendsPistonPayload(t *testing.T) {
	var got pistonRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"python","version":"3.10.0","run":{"stdout":"hi\n","output":"hi\n","code":0}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Execute(context.Background(), Request{
		Code:     "print(input())",
		Language: "python",
		Version:  "3.10.0",
		Stdin:    "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, "python", got.Language)
	assert.Equal(t, "3.10.0", got.Version)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "print(input())", got.Files[0].Content)
	assert.Equal(t, "hi", got.Stdin)

	assert.Equal(t, "hi\n", res.Output)
	assert.Contains(t, string(res.Raw), `"version":"3.10.0"`)
}

func TestExecuteNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Execute(context.Background(), Request{Language: "python"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExecuteTimeout(t *testing.T) {
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
	_, err := New(srv.URL, 50*time.Millisecond).Execute(context.Background(), Request{Language: "python"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	resp := ErrorResponse(err)
	var decoded pistonResponse
	require.NoError(t, json.Unmarshal(resp, &decoded))
	assert.True(t, strings.HasPrefix(decoded.Run.Output, "Error:"), decoded.Run.Output)
	assert.Contains(t, decoded.Run.Output, "timeout")
}

func TestExecuteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Execute(context.Background(), Request{Language: "python"})
	assert.Error(t, err)
}

func TestExecuteInvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Execute(context.Background(), Request{Language: "python"})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultEndpoint, c.endpoint)
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestErrorResponseShape(t *testing.T) {
	resp := ErrorResponse(errors.New("boom"))
	assert.JSONEq(t, `{"run":{"output":"Error: boom"}}`, string(resp))
}
