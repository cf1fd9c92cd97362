package schoolapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Query(t *testing.T) {
	var gotSQL, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotToken = r.Header.Get("X-Auth-Token")

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		gotSQL = req["sql"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"10": {"id": 3}, "2": {"id": 2}, "0": {"id": 1}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	rows, err := client.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "SELECT 1", gotSQL)
	require.Len(t, rows, 3)
	assert.JSONEq(t, `{"id": 1}`, string(rows[0]))
	assert.JSONEq(t, `{"id": 2}`, string(rows[1]))
	assert.JSONEq(t, `{"id": 3}`, string(rows[2]))
}

func TestClient_QueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong", time.Second, nil)
	_, err := client.Query(context.Background(), "SELECT 1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad token")
}

func TestClient_QueryInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", time.Second, nil)
	_, err := client.Query(context.Background(), "SELECT 1")
	assert.ErrorContains(t, err, "parse response")
}

func TestDecodeRows(t *testing.T) {
	rows, err := DecodeRows([]byte(`[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = DecodeRows([]byte(`  `))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = DecodeRows([]byte(`null`))
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestGroupQueries(t *testing.T) {
	queries, err := GroupQueries("3", "1205", "11")
	require.NoError(t, err)

	for _, name := range []string{
		QueryGroup, QueryCampus, QueryStudents, QuerySubjectAverages,
		QueryGeneralAverages, QueryObservations, QueryCredits, QueryAbsences,
	} {
		assert.Contains(t, queries, name)
	}
	assert.Contains(t, queries[QueryGroup], "CODE_GROUPE = 1205")
	assert.Contains(t, queries[QueryCampus], "CODE_SITE = 3")
}

func TestGroupQueries_RejectsNonNumericCodes(t *testing.T) {
	_, err := GroupQueries("3", "1205 OR 1=1", "11")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = GroupQueries("", "1205", "11")
	assert.ErrorIs(t, err, ErrInvalidCode)
}
