package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anescall/callsched/internal/config"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/reporting"
)

func TestHandleHealth(t *testing.T) {
	s := New(config.Default().Server)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleLatestBeforePublish(t *testing.T) {
	s := New(config.Default().Server)

	req := httptest.NewRequest(http.MethodGet, "/schedule/latest", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleLatestAfterPublish(t *testing.T) {
	s := New(config.Default().Server)
	doc := &reporting.SolvedDocument{
		DerivedSchedule: &model.DerivedSchedule{
			Order:  []string{"2024-03-04"},
			Period: model.Period{Start: "2024-03-04", End: "2024-03-04"},
		},
	}
	s.PublishLatest(doc)

	req := httptest.NewRequest(http.MethodGet, "/schedule/latest", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got reporting.SolvedDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.DerivedSchedule)
	assert.Equal(t, "2024-03-04", got.Period.Start)
}
