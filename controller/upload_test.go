package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/logger"
	"github.com/scriptgen-ra/scriptgen/storage"
)

func newUploadAPI(t *testing.T) *API {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		UploadsDir: filepath.Join(dir, "uploads"),
		OutputDir:  filepath.Join(dir, "output"),
	}
	store, err := storage.New(cfg)
	require.NoError(t, err)
	return &API{Cfg: cfg, Store: store}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadRequest(t *testing.T, api *API, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, contentType := multipartBody(t, files)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-files", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	gmw.SetLogger(c, logger.Logger)

	api.UploadFiles(c)
	return w
}

func TestUploadFilesStoresAllowedTypes(t *testing.T) {
	api := newUploadAPI(t)

	w := uploadRequest(t, api, map[string]string{
		"excelFile":  "cases.xlsx",
		"methodFile": "Methods.java",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Files   map[string]string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Files, 2)

	for _, stored := range resp.Files {
		_, err := os.Stat(filepath.Join(api.Store.UploadsDir, stored))
		require.NoError(t, err)
	}
}

func TestUploadFilesRejectsUnknownExtension(t *testing.T) {
	api := newUploadAPI(t)

	w := uploadRequest(t, api, map[string]string{"methodFile": "payload.exe"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(api.Store.UploadsDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPreviewRows(t *testing.T) {
	headers, cases := previewRows([][]string{
		{"Test Case", "Method", "URL", "Expected Status", "Description"},
		{"Login", "POST", "https://svc/login", "200", "happy path"},
		{"", "", "", "", ""},
	})

	require.Equal(t, []string{"Test Case", "Method", "URL", "Expected Status", "Description"}, headers)
	require.Len(t, cases, 2)

	require.Equal(t, "Login", cases[0]["testCaseName"])
	require.Equal(t, "POST", cases[0]["method"])
	require.Equal(t, "https://svc/login", cases[0]["url"])
	require.Equal(t, "200", cases[0]["expectedStatusCode"])

	// blank rows fall back to positional names and defaults
	require.Equal(t, "Test Case 2", cases[1]["testCaseName"])
	require.Equal(t, "GET", cases[1]["method"])
	require.Equal(t, "N/A", cases[1]["url"])
	require.Equal(t, "200", cases[1]["expectedStatusCode"])
	require.Equal(t, "No description", cases[1]["description"])
}

func TestPreviewRowsEmpty(t *testing.T) {
	headers, cases := previewRows(nil)
	require.Nil(t, headers)
	require.Nil(t, cases)
}
