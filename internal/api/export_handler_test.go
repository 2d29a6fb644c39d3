package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHandler_CreateAndDownload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := postJSON(t, env, "/api/export", `{"conversation_ids":["a-conv","b-conv"],"format":"json"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ExportID)
	assert.Equal(t, "json", resp.Format)
	assert.Positive(t, resp.SizeBytes)

	download := getPath(t, env, "/api/export/"+resp.ExportID+"/download")
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "application/json", download.Header().Get("Content-Type"))
	assert.Contains(t, download.Header().Get("Content-Disposition"), "conversations-export.json")
	assert.Equal(t, resp.SizeBytes, download.Body.Len())
}

func TestExportHandler_CSVContentType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := postJSON(t, env, "/api/export", `{"conversation_ids":["a-conv"],"format":"csv"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	download := getPath(t, env, "/api/export/"+resp.ExportID+"/download")
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "text/csv", download.Header().Get("Content-Type"))
}

func TestExportHandler_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := postJSON(t, env, "/api/export", `{"conversation_ids":["a-conv"],"format":"xml"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandler_RejectsEmptySelection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := postJSON(t, env, "/api/export", `{"conversation_ids":[],"format":"json"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandler_DownloadUnknown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := getPath(t, env, "/api/export/no-such-export/download")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
