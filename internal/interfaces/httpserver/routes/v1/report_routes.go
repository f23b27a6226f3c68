package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

func registerReportRoutes(router gin.IRoutes, handler *handlers.ReportHandler) {
	router.POST("/reports", handler.Create)
	router.GET("/reports", handler.List)
	router.GET("/reports/:id", handler.Get)
	router.PATCH("/reports/:id", handler.Update)
	router.POST("/reports/:id/status", handler.UpdateStatus)
	router.POST("/reports/:id/submit", handler.SubmitForReview)
	router.DELETE("/reports/:id", handler.Delete)
}
