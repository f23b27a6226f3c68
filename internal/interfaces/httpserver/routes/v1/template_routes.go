package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

func registerTemplateRoutes(router gin.IRoutes, handler *handlers.TemplateHandler) {
	router.POST("/templates", handler.Create)
	router.GET("/templates", handler.List)
	router.GET("/templates/:id", handler.Get)
	router.PATCH("/templates/:id", handler.Update)
	router.DELETE("/templates/:id", handler.Delete)
}
