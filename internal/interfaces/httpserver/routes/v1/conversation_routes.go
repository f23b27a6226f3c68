package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/report-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, conversations *handlers.ConversationHandler, drafts *handlers.DraftHandler) {
	router.POST("/conversations/:id/messages", conversations.Submit)
	router.GET("/conversations/:id/messages", conversations.Messages)
	router.DELETE("/conversations/:id/messages", conversations.Clear)
	router.GET("/conversations/:id/status", conversations.Status)
	router.GET("/conversations/:id/events", conversations.Events)

	// Draft of the report being composed in the conversation
	router.GET("/conversations/:id/draft", drafts.Get)
	router.PATCH("/conversations/:id/draft", drafts.Edit)
	router.DELETE("/conversations/:id/draft", drafts.Reset)
	router.POST("/conversations/:id/draft/save", drafts.Save)
}
