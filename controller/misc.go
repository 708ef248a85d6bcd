package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scriptgen-ra/scriptgen/common"
	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/helper"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Server is running",
	})
}

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"version":     common.Version,
			"system_name": config.SystemName,
			"start_time":  common.StartTime,
			"server_time": helper.GetTimestamp(),
		},
	})
}
