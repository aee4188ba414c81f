package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOfTaxonomy(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          Validation("bad"),
		http.StatusUnauthorized:        Unauthorized(),
		http.StatusConflict:            Conflict("dup"),
		http.StatusNotFound:            NotFound("missing", ""),
		http.StatusMethodNotAllowed:    MethodNotAllowed("nope"),
		http.StatusInternalServerError: Upstream("erp down", errors.New("dial tcp")),
	}
	for want, err := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
	assert.Equal(t, http.StatusBadRequest, StatusOf(Ambiguous("many", nil, "")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("create tag: %w", Conflict(`Tag "Premium" already exists`))
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestRespondErrorWritesBody(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, Ambiguous(`Multiple products found matching "Widget"`, []Match{{ID: 1, Name: "Widget"}, {ID: 2, Name: "Widget"}}, "Please use the exact product name"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, `Multiple products found matching "Widget"`, body.Error)
	assert.Len(t, body.Matches, 2)
	assert.Equal(t, "Please use the exact product name", body.Suggestion)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pq: connection refused at 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestUpstreamErrorKeepsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Upstream("Could not retrieve tags", cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not retrieve tags: timeout", err.Error())
}
