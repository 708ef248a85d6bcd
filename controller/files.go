package controller

import (
	"net/http"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/scriptgen-ra/scriptgen/dto"
	"github.com/scriptgen-ra/scriptgen/middleware"
)

// Download serves one generated artifact by name.
func (a *API) Download(c *gin.Context) {
	filename := c.Param("filename")
	path, err := a.Store.OutputPath(filename)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		middleware.AbortWithError(c, http.StatusNotFound, errors.New("file not found"))
		return
	}
	c.FileAttachment(path, filename)
}

// DownloadCombined serves a combined artifact. When the name does not look
// like a combined file, the most recent combined artifact is served instead.
func (a *API) DownloadCombined(c *gin.Context) {
	filename := c.Param("filename")
	if !strings.Contains(filename, "GeneratedCombined_") {
		latest, err := a.Store.LatestCombined()
		if err != nil {
			middleware.AbortWithError(c, http.StatusNotFound, err)
			return
		}
		filename = latest
	}

	path, err := a.Store.OutputPath(filename)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		middleware.AbortWithError(c, http.StatusNotFound, errors.New("combined file not found"))
		return
	}
	c.Header("Content-Type", "text/plain")
	c.FileAttachment(path, filename)
}

// ListGeneratedFiles lists every artifact in the output directory, newest
// first.
func (a *API) ListGeneratedFiles(c *gin.Context) {
	files, err := a.Store.ListGenerated()
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dto.GeneratedFilesResponse{
		Success:         true,
		Files:           files,
		TotalFiles:      len(files),
		OutputDirectory: a.Store.OutputDir,
	})
}
