package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"businessboard/backend/domain"
	"businessboard/backend/models"
	"businessboard/backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetBoard returns every list the board view needs in one response.
func GetBoard(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.ListBoard(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// ExportBoard downloads the board as a spreadsheet, optionally restricted to
// one business type with ?business_type_id=.
func ExportBoard(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := filteredBoard(c, svc)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := utils.WriteBoardWorkbook(&buf, b); err != nil {
			respondError(c, err)
			return
		}
		attach(c, "xlsx", xlsxContentType, buf.Bytes())
	}
}

// BoardReport downloads the board summary as PDF. It takes the same filter
// as ExportBoard.
func BoardReport(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := filteredBoard(c, svc)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := utils.WriteBoardReport(&buf, b, time.Now().UTC()); err != nil {
			respondError(c, err)
			return
		}
		attach(c, "pdf", "application/pdf", buf.Bytes())
	}
}

func filteredBoard(c *gin.Context, svc *domain.Service) (models.Board, bool) {
	var typeID int64
	if v := c.Query("business_type_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			ve := &domain.ValidationError{}
			ve.Add("business_type_id", "The business_type_id field must be an integer.")
			respondError(c, ve)
			return models.Board{}, false
		}
		typeID = n
	}
	b, err := svc.ListBoard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return models.Board{}, false
	}
	return b.FilterByType(typeID), true
}

func attach(c *gin.Context, ext, contentType string, data []byte) {
	name := "board-" + time.Now().UTC().Format("20060102") + "." + ext
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func Health(svc *domain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
