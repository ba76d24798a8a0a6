package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"spendbot/internal/export"
	"spendbot/internal/service"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves expense downloads.
type ExportHandler struct {
	exports service.ExportService
	now     func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exports service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports, now: time.Now}
}

// Export handles GET /api/v1/users/:id/expenses/export?format=csv|xlsx&from=YYYY-MM-DD&to=YYYY-MM-DD
// The range defaults to the current calendar month.
func (h *ExportHandler) Export(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
		return
	}

	now := h.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return
		}
	}
	if to.Before(from) {
		RespondError(c, http.StatusBadRequest, "INVALID_RANGE", "to must not be before from")
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	rows, err := h.exports.Rows(c.Request.Context(), userID, from, to)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
		err = export.WriteXLSX(&buf, rows)
	} else {
		err = export.WriteCSV(&buf, rows)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("expenses_"+strconv.FormatInt(userID, 10), from, to, format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
