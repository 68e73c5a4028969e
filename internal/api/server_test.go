// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleProfile = "[Policies]\nHTTP = http, port = 8310, server-address = 127.0.0.1\n" +
	"[Rule]\nFINAL,HTTP\n"

func TestHandleDecodeReturnsProfileJSON(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/decode", bytes.NewBufferString(sampleProfile))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "Policies")
}

func TestHandleDecodeRejectsInvalidProfile(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/decode", bytes.NewBufferString("[Rule]\nFINAL,NOPE\n"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleValidateAcceptsGoodProfile(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewBufferString(sampleProfile))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleDiffReportsChanges(t *testing.T) {
	s := NewServer(nil, nil, nil)

	after := "[Policies]\nHTTP = http, port = 9999, server-address = 127.0.0.1\n" +
		"[Rule]\nFINAL,HTTP\n"
	reqBody, _ := json.Marshal(diffRequest{Before: sampleProfile, After: after})

	req := httptest.NewRequest(http.MethodPost, "/v1/diff", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
