package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"businessboard/backend/domain"
	"businessboard/backend/middlewares"
	"businessboard/backend/models"
)

// respondError writes the HTTP form of a domain error.
func respondError(c *gin.Context, err error) {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		nf *domain.NotFoundError
		iv *domain.InvariantViolation
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": ve.Error(), "errors": ve.Fields})
	case errors.As(err, &ce):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": ce.Message, "errors": gin.H{ce.Field: []string{ce.Message}}})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"message": nf.Message()})
	case errors.As(err, &iv):
		c.JSON(http.StatusBadRequest, gin.H{"error": iv.Message})
	default:
		_ = c.Error(err)
		log.WithError(err).WithField("request_id", c.GetString(middlewares.RequestIDKey)).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into dst. An empty body decodes as {} so that
// missing fields are reported individually. It writes the 422 itself and
// returns false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondError(c, bindError(err))
	return false
}

func bindError(err error) error {
	ve := &domain.ValidationError{}
	var ute *json.UnmarshalTypeError
	switch {
	case errors.Is(err, models.ErrInvalidMoney):
		ve.Add("value", "The value field must be a number.")
	case errors.As(err, &ute) && ute.Field != "":
		ve.Add(ute.Field, "The "+ute.Field+" field must be "+kindName(ute.Type)+".")
	default:
		ve.Add("body", "The request body must be a valid JSON object.")
	}
	return ve
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64:
		return "a number"
	}
	return "valid"
}

// pathID parses the :id parameter. A malformed id cannot name a row, so it
// answers 404 for entity.
func pathID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": entity + " not found."})
		return 0, false
	}
	return id, true
}
