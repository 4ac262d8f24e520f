package server

import (
	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/gin-gonic/gin"
)

func (s *Server) SetupRoutes(app *app.App) {
	s.ginEngine.GET("/healthz", handlerWrapper(app, healthz))
	s.ginEngine.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	s.ginEngine.GET("/", handlerWrapper(app, showPage))
	s.ginEngine.POST("/analyze", handlerWrapper(app, analyzeClaim))
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
