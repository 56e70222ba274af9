package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/routes/v1/chat"
)

type V1Route struct {
	chat *chat.ChatRoute
}

func NewV1Route(chat *chat.ChatRoute) *V1Route {
	return &V1Route{chat}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", GetReadyz)

	v1Route.chat.RegisterRouter(v1Router)
}

// GetHealthz reports liveness for orchestrators and monitoring systems.
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadyz reports whether the service is ready to accept traffic.
func GetReadyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
