package routes

import (
	"github.com/gin-gonic/gin"

	"businessboard/backend/controllers"
	"businessboard/backend/domain"
)

func Register(r *gin.Engine, svc *domain.Service) {
	api := r.Group("/api")
	{
		api.GET("/health", controllers.Health(svc))

		// Board aggregate, spreadsheet export and PDF report
		api.GET("/board", controllers.GetBoard(svc))
		api.GET("/board/export", controllers.ExportBoard(svc))
		api.GET("/board/report", controllers.BoardReport(svc))

		api.GET("/businesses", controllers.ListBusinesses(svc))
		api.POST("/businesses", controllers.CreateBusiness(svc))
		api.PUT("/businesses/:id", controllers.UpdateBusiness(svc))
		api.DELETE("/businesses/:id", controllers.DeleteBusiness(svc))

		api.GET("/states", controllers.ListStates(svc))
		api.POST("/states", controllers.CreateState(svc))
		api.PUT("/states/:id", controllers.RenameState(svc))
		api.DELETE("/states/:id", controllers.DeleteState(svc))

		api.GET("/business-types", controllers.ListBusinessTypes(svc))

		api.GET("/users", controllers.ListUsers(svc))
		api.POST("/users", controllers.CreateUser(svc))
	}
}
