package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/middlewares"
	chatrequests "github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/requests/chat"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/responses"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

type ChatRoute struct {
	handler *chathandler.ChatHandler
}

func NewChatRoute(handler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{handler: handler}
}

func (route *ChatRoute) RegisterRouter(router gin.IRouter) {
	chats := router.Group("/chats")
	chats.Use(middlewares.OwnerMiddleware())

	chats.GET("", route.listConversations)
	chats.POST("", route.logMessage)
	chats.POST("/new", route.createConversation)
	chats.GET("/session", route.sessionState)
	chats.DELETE("/session", route.closeSession)
	chats.GET("/:conversation_id", route.loadConversation)
	chats.DELETE("/:conversation_id", route.deleteConversation)
}

func (route *ChatRoute) listConversations(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	response, err := route.handler.ListConversations(ctx, owner)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list conversations")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ChatRoute) logMessage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	var req chatrequests.LogMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "9c5b1e7d-4a8f-4c2b-b6d0-3e9a7c5f1d84")
		return
	}

	response, err := route.handler.LogMessage(ctx, owner, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to log message")
		return
	}

	reqCtx.JSON(http.StatusCreated, response)
}

func (route *ChatRoute) createConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	response, err := route.handler.CreateConversation(ctx, owner)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create conversation")
		return
	}

	reqCtx.JSON(http.StatusCreated, response)
}

func (route *ChatRoute) loadConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	response, err := route.handler.LoadConversation(ctx, owner, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to load conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ChatRoute) deleteConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	response, err := route.handler.DeleteConversation(ctx, owner, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ChatRoute) sessionState(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	reqCtx.JSON(http.StatusOK, route.handler.SessionState(ctx, owner))
}

func (route *ChatRoute) closeSession(reqCtx *gin.Context) {
	owner, ok := middlewares.GetOwnerFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "owner identity required", "d2e8a4c6-1f3b-4d7e-9a0c-6b5f8d2e4a17")
		return
	}

	route.handler.CloseSession(owner)
	reqCtx.JSON(http.StatusOK, gin.H{"closed": true})
}
