package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

func ListBusinesses(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListBusinesses(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func CreateBusiness(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.BusinessInput
		if !bindJSON(c, &in) {
			return
		}
		b, err := svc.CreateBusiness(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// UpdateBusiness requires state_id on the wire; board moves always send it.
func UpdateBusiness(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Business")
		if !ok {
			return
		}
		var in models.BusinessInput
		if !bindJSON(c, &in) {
			return
		}
		if !in.StateID.Set {
			if _, err := svc.GetBusiness(c.Request.Context(), id); err != nil {
				respondError(c, err)
				return
			}
			ve := &domain.ValidationError{}
			ve.Add("state_id", "The state_id field is required.")
			respondError(c, ve)
			return
		}
		b, err := svc.UpdateBusiness(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func DeleteBusiness(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "Business")
		if !ok {
			return
		}
		if err := svc.DeleteBusiness(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Business removed successfully."})
	}
}
