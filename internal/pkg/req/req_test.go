package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoom/internal/pkg/errs"
)

type pathInput struct {
	RoomID string `json:"roomId"`
	Path   string `json:"path"`
}

func newJSONRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestBindJSON(t *testing.T) {
	var in pathInput
	err := BindJSON(httptest.NewRecorder(), newJSONRequest(`{"roomId":"r1","path":"a/b.txt"}`), &in)
	require.Nil(t, err)
	assert.Equal(t, pathInput{RoomID: "r1", Path: "a/b.txt"}, in)
}

func TestBindJSONErrors(t *testing.T) {
	cases := map[string]struct {
		body        string
		contentType string
		code        int
	}{
		"wrong content type": {`{}`, "text/plain", errs.ErrUnsupportedMediaType},
		"syntax error":       {`{"roomId":`, "application/json", errs.ErrInvalidJSONFormat},
		"unknown field":      {`{"roomId":"r1","extra":1}`, "application/json", errs.ErrInvalidJSONFormat},
		"trailing value":     {`{"roomId":"r1"} {"roomId":"r2"}`, "application/json", errs.ErrExtraContentInBody},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", tc.contentType)

			var in pathInput
			err := BindJSON(httptest.NewRecorder(), r, &in)
			require.NotNil(t, err)
			assert.Equal(t, tc.code, err.Code)
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?limit=5&bad=abc&big=1000", nil)

	v, err := QueryInt(r, "limit", 20, 1, 100)
	require.Nil(t, err)
	assert.Equal(t, 5, v)

	v, err = QueryInt(r, "missing", 20, 1, 100)
	require.Nil(t, err)
	assert.Equal(t, 20, v)

	_, err = QueryInt(r, "bad", 20, 1, 100)
	assert.NotNil(t, err)

	_, err = QueryInt(r, "big", 20, 1, 100)
	assert.NotNil(t, err)
}
