package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

const (
	msgStateCreated   = "State created successfully."
	msgStateUpdated   = "State updated successfully."
	msgStateUnchanged = "No changes were made. The state name remains the same."
	msgStateDeleted   = "State deleted successfully."
)

func ListStates(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListStates(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateState(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StateRequest
		if !bindJSON(c, &req) {
			return
		}
		st, err := svc.CreateState(c.Request.Context(), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.StateResponse{Message: msgStateCreated, State: st})
	}
}

func RenameState(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "State")
		if !ok {
			return
		}
		var req models.StateRequest
		if !bindJSON(c, &req) {
			return
		}
		st, changed, err := svc.RenameState(c.Request.Context(), id, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		msg := msgStateUpdated
		if !changed {
			msg = msgStateUnchanged
		}
		c.JSON(http.StatusOK, models.StateResponse{Message: msg, State: st})
	}
}

func DeleteState(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "State")
		if !ok {
			return
		}
		if err := svc.DeleteState(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: msgStateDeleted})
	}
}
