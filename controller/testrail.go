package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"

	"github.com/scriptgen-ra/scriptgen/dto"
	"github.com/scriptgen-ra/scriptgen/extractor"
	"github.com/scriptgen-ra/scriptgen/middleware"
)

func (a *API) testRailConfig(req *dto.TestRailConfigRequest) *extractor.TestRailConfig {
	cfg := &extractor.TestRailConfig{
		Username:   req.Username,
		APIKey:     req.APIKey,
		TestCaseID: req.TestCaseID,
		BaseURL:    req.BaseURL,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = a.Cfg.TestRailBaseURL
	}
	return cfg
}

// TestTestRailConnection probes TestRail with the submitted credentials.
// The outcome is always a 200 with a success flag; probe failures are not
// server errors.
func (a *API) TestTestRailConnection(c *gin.Context) {
	var req dto.TestRailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}
	result := extractor.TestConnection(gmw.Ctx(c), a.testRailConfig(&req))
	c.JSON(http.StatusOK, result)
}

// PreviewTestRail fetches a case and returns its decoded form so the user
// can inspect what a generation would consume.
func (a *API) PreviewTestRail(c *gin.Context) {
	var req dto.TestRailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}
	if req.Username == "" || req.APIKey == "" || req.TestCaseID == "" {
		middleware.AbortWithError(c, http.StatusBadRequest,
			errors.New("missing required TestRail configuration"))
		return
	}

	cfg := a.testRailConfig(&req)
	data, err := extractor.FetchCase(gmw.Ctx(c), cfg)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadGateway,
			errors.Wrap(err, "failed to preview TestRail data"))
		return
	}
	decoded := extractor.DecodeCase(data)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"testCase": gin.H{
			"title":      data.Title,
			"apiDetails": decoded.APIDetails,
			"scenarios":  decoded.Scenarios,
			"preconds":   data.CustomPreconds,
		},
	})
}
