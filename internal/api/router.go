package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"spends-pipeline/internal/api/handler"
	"spends-pipeline/pkg/router"
)

// RegisterRoutes wires the API surface onto the router.
func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/builds", handler.CreateBuild)
	r.GET("/api/v1/builds", handler.ListBuilds)
	r.GET("/api/v1/builds/*/errors", handler.GetBuildErrors)
	r.GET("/api/v1/builds/*", handler.GetBuild)

	r.GET("/api/v1/dashboards", handler.ListDashboards)
	r.GET("/api/v1/dashboards/*", handler.GetDashboard)

	r.GET("/api/v1/tables", handler.ListTables)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
