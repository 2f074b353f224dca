package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

func ListUsers(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateUser(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateUserRequest
		if !bindJSON(c, &req) {
			return
		}
		u, err := svc.CreateUser(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func ListBusinessTypes(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListBusinessTypes(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
