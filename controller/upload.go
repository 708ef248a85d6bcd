package controller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/scriptgen-ra/scriptgen/dto"
	"github.com/scriptgen-ra/scriptgen/middleware"
	"github.com/scriptgen-ra/scriptgen/monitor"
	"github.com/scriptgen-ra/scriptgen/storage"
)

// uploadFields are the multipart field names accepted by UploadFiles.
var uploadFields = []string{"excelFile", "methodFile", "testFile"}

// allowedUploadExts limits uploads to spreadsheet and Java template files.
var allowedUploadExts = map[string]bool{".xlsx": true, ".xls": true, ".java": true}

// UploadFiles stores the submitted template and spreadsheet files under
// timestamped names and echoes the stored names back for later reference in
// a generate request.
func (a *API) UploadFiles(c *gin.Context) {
	lg := gmw.GetLogger(c)

	form, err := c.MultipartForm()
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid multipart form"))
		return
	}

	uploaded := map[string]string{}
	for _, field := range uploadFields {
		files := form.File[field]
		if len(files) == 0 {
			continue
		}
		file := files[0]
		if !allowedUploadExts[strings.ToLower(filepath.Ext(file.Filename))] {
			middleware.AbortWithError(c, http.StatusBadRequest,
				errors.Errorf("invalid file type %q, only Excel and Java files are allowed", file.Filename))
			return
		}
		storedName := storage.TimestampedName(file.Filename)
		dst, err := a.Store.UploadPath(storedName)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, err)
			return
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			middleware.AbortWithError(c, http.StatusInternalServerError,
				errors.Wrapf(err, "save uploaded file %q", field))
			return
		}
		uploaded[field] = storedName
		monitor.CountUpload()
	}
	if len(uploaded) == 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("no files provided"))
		return
	}

	lg.Info("files uploaded", zap.Int("count", len(uploaded)))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   uploaded,
	})
}

// PreviewExcel returns a tabular preview of a spreadsheet. The source is, in
// order of precedence: a fresh multipart upload, an already-stored upload
// named in the body, or the configured default workbook.
func (a *API) PreviewExcel(c *gin.Context) {
	filePath, fileName, cleanup, err := a.resolvePreviewSource(c)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}
	if cleanup != nil {
		defer cleanup()
	}
	if _, err := os.Stat(filePath); err != nil {
		middleware.AbortWithError(c, http.StatusNotFound,
			errors.Errorf("excel file not found: %s", fileName))
		return
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest,
			errors.Wrap(err, "open workbook"))
		return
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("workbook has no sheets"))
		return
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest,
			errors.Wrap(err, "read workbook"))
		return
	}

	headers, testCases := previewRows(rows)
	if len(testCases) > 50 {
		testCases = testCases[:50]
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"testCases": testCases,
		"summary": gin.H{
			"totalRows":        max(len(rows)-1, 0),
			"sheets":           len(sheets),
			"fileName":         fileName,
			"availableHeaders": headers,
			"sheetName":        sheets[0],
		},
	})
}

func (a *API) resolvePreviewSource(c *gin.Context) (path, name string, cleanup func(), err error) {
	if file, ferr := c.FormFile("excelFile"); ferr == nil {
		tmp := filepath.Join(os.TempDir(), storage.TimestampedName(file.Filename))
		if err := c.SaveUploadedFile(file, tmp); err != nil {
			return "", "", nil, errors.Wrap(err, "save preview upload")
		}
		return tmp, file.Filename, func() { _ = os.Remove(tmp) }, nil
	}

	var req dto.PreviewExcelRequest
	_ = c.ShouldBindJSON(&req)
	switch {
	case req.Filename != "":
		p, err := a.Store.UploadPath(req.Filename)
		if err != nil {
			return "", "", nil, err
		}
		return p, req.Filename, nil, nil
	case req.UseDefault:
		if a.Cfg.DefaultExcelPath == "" {
			return "", "", nil, errors.New("default excel path not configured")
		}
		return a.Cfg.DefaultExcelPath, filepath.Base(a.Cfg.DefaultExcelPath), nil, nil
	default:
		return "", "", nil, errors.New("no excel file provided")
	}
}

// previewRows maps sheet rows onto loosely-typed preview records. Column
// matching is forgiving about header spelling.
func previewRows(rows [][]string) (headers []string, testCases []gin.H) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers = rows[0]
	find := func(row []string, names ...string) string {
		for i, h := range headers {
			lh := strings.ToLower(strings.TrimSpace(h))
			for _, n := range names {
				if lh == n && i < len(row) {
					return strings.TrimSpace(row[i])
				}
			}
		}
		return ""
	}
	for i, row := range rows[1:] {
		name := find(row, "test case", "testcase", "test_case", "test case name")
		if name == "" {
			name = fmt.Sprintf("Test Case %d", i+1)
		}
		method := find(row, "method", "http method", "request method")
		if method == "" {
			method = "GET"
		}
		url := find(row, "url", "endpoint", "request url", "api_url")
		if url == "" {
			url = "N/A"
		}
		status := find(row, "expected status", "status code", "response code")
		if status == "" {
			status = "200"
		}
		description := find(row, "description", "test description")
		if description == "" {
			description = "No description"
		}
		testCases = append(testCases, gin.H{
			"testCaseName":       name,
			"method":             method,
			"url":                url,
			"expectedStatusCode": status,
			"description":        description,
		})
	}
	return headers, testCases
}
