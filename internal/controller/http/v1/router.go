// Package v1 implements routing paths. Each services in own file.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, cu entity.ConversionUsecase, maxUpload int64) {
	// Options
	handler.Use(gin.Recovery())

	// Swagger
	swaggerHandler := ginSwagger.DisablingWrapHandler(swaggerFiles.Handler, "DISABLE_SWAGGER_HTTP_HANDLER")
	handler.GET("/swagger/*any", swaggerHandler)

	// Health
	handler.GET("/", root)
	handler.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Routers
	h := handler.Group("/v1")
	{
		newConversionRoutes(h, cu, l, maxUpload)
	}
}

type rootResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

func root(c *gin.Context) {
	c.JSON(http.StatusOK, rootResponse{OK: true, Service: "audio-conversion"})
}
