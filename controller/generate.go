package controller

import (
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/scriptgen-ra/scriptgen/common/ctxkey"
	"github.com/scriptgen-ra/scriptgen/dto"
	"github.com/scriptgen-ra/scriptgen/extractor"
	"github.com/scriptgen-ra/scriptgen/generator"
	"github.com/scriptgen-ra/scriptgen/middleware"
	"github.com/scriptgen-ra/scriptgen/model"
	"github.com/scriptgen-ra/scriptgen/relay"
)

// GenerateScript runs the full pipeline for an authenticated user and
// records the outcome.
func (a *API) GenerateScript(c *gin.Context) {
	lg := gmw.GetLogger(c)

	var req dto.GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return
	}

	genReq := &generator.Request{
		DataSource:      req.DataSource,
		UseDefaultFiles: req.UseDefaultFiles,
		Files:           req.Files,
	}
	if req.TestRailConfig != nil {
		genReq.TestRail = &extractor.TestRailConfig{
			Username:   req.TestRailConfig.Username,
			APIKey:     req.TestRailConfig.APIKey,
			TestCaseID: req.TestRailConfig.TestCaseID,
			BaseURL:    req.TestRailConfig.BaseURL,
		}
	}

	result, err := a.Orchestrator.Generate(gmw.Ctx(c), genReq)
	if err != nil {
		a.abortGenerate(c, err)
		return
	}

	record := &model.Generation{
		UserId:           c.GetInt(ctxkey.Id),
		GenerationId:     result.GenerationID,
		DataSource:       req.DataSource,
		ScenarioCount:    len(result.Scenarios),
		PromptTokens:     result.PromptTokens,
		SplitStrategy:    string(result.SplitStrategy),
		MethodFilename:   result.Saved.MethodFilename,
		TestFilename:     result.Saved.TestFilename,
		CombinedFilename: result.Saved.CombinedFilename,
	}
	if err := record.Insert(); err != nil {
		// the artifacts exist on disk, keep serving them
		lg.Error("failed to record generation", zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.GenerateScriptResponse{
		Success:          true,
		GenerationID:     result.GenerationID,
		MethodFile:       result.MethodFile,
		TestFile:         result.TestFile,
		MethodFilename:   result.Saved.MethodFilename,
		TestFilename:     result.Saved.TestFilename,
		CombinedFilename: result.Saved.CombinedFilename,
		APIDetails:       result.APIDetails,
		Scenarios:        result.Scenarios,
		SplitStrategy:    string(result.SplitStrategy),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		FilesSaved:       result.Saved,
	})
}

// abortGenerate maps pipeline failures onto HTTP statuses: validation
// problems are the caller's fault, upstream failures keep their classified
// status, everything else is a 500.
func (a *API) abortGenerate(c *gin.Context, err error) {
	var ve *generator.ValidationError
	if errors.As(err, &ve) {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}
	var fe *extractor.FormatError
	if errors.As(err, &fe) {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}
	if ue, ok := relay.AsUpstream(err); ok {
		middleware.AbortWithError(c, ue.StatusCode(), err)
		return
	}
	middleware.AbortWithError(c, http.StatusInternalServerError, err)
}

// TestAzureOpenAI probes the completion backend with the fixed probe prompt.
func (a *API) TestAzureOpenAI(c *gin.Context) {
	content, err := a.Invoker.Probe(gmw.Ctx(c))
	if err != nil {
		status := http.StatusInternalServerError
		if ue, ok := relay.AsUpstream(err); ok {
			status = ue.StatusCode()
		}
		middleware.AbortWithError(c, status, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Azure OpenAI connection test successful!",
		"response": content,
		"config": gin.H{
			"deployment": a.Cfg.DeploymentName,
			"apiVersion": a.Cfg.APIVersion,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ListGenerations pages the caller's generation history from the database.
func (a *API) ListGenerations(c *gin.Context) {
	startIdx := queryInt(c, "start_idx", 0)
	num := queryInt(c, "num", 20)
	if num > 100 {
		num = 100
	}
	generations, err := model.GetGenerationsByUserId(c.GetInt(ctxkey.Id), startIdx, num)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    generations,
	})
}
