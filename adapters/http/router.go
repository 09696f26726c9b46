package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/user-management/pkg/logger"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(serviceName string, userHandler *UserHandler, log logger.Logger) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(ErrorMiddleware(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	v1 := r.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.PUT("/:id/settings", userHandler.UpdateUserSettings)
			users.PUT("/:id/refresh", userHandler.RestoreUser)
		}
	}

	return r
}
