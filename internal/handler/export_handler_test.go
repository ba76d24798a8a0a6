package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spendbot/internal/domain"
	"spendbot/internal/export"
	"spendbot/internal/handler"
	"spendbot/mocks"
)

func getExport(h *handler.ExportHandler, id, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id+"/expenses/export?"+query, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	h.Export(c)
	return w
}

func sampleRows() []export.Row {
	return []export.Row{{
		Date:     time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Merchant: "Corner Shop",
		Amount:   decimal.RequireFromString("12.50"),
		Currency: "EUR",
		Status:   domain.ExpenseStatusConfirmed,
	}}
}

func TestExportHandler_CSV(t *testing.T) {
	svc := new(mocks.MockExportService)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	svc.On("Rows", mock.Anything, int64(42), from, to).Return(sampleRows(), nil)

	w := getExport(handler.NewExportHandler(svc), "42", "from=2024-03-01&to=2024-03-31")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="expenses_42_2024-03-01_2024-03-31.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Corner Shop")
	svc.AssertExpectations(t)
}

func TestExportHandler_XLSX(t *testing.T) {
	svc := new(mocks.MockExportService)
	svc.On("Rows", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(sampleRows(), nil)

	w := getExport(handler.NewExportHandler(svc), "42", "format=xlsx")

	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue("Expenses", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", v)
}

func TestExportHandler_DefaultsToCurrentMonth(t *testing.T) {
	svc := new(mocks.MockExportService)
	svc.On("Rows", mock.Anything, int64(42), mock.MatchedBy(func(from time.Time) bool {
		return from.Day() == 1
	}), mock.MatchedBy(func(to time.Time) bool {
		return to.AddDate(0, 0, 1).Day() == 1
	})).Return([]export.Row{}, nil)

	w := getExport(handler.NewExportHandler(svc), "42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExportHandler_BadInput(t *testing.T) {
	h := handler.NewExportHandler(new(mocks.MockExportService))

	assert.Equal(t, http.StatusBadRequest, getExport(h, "abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, getExport(h, "42", "from=14.03.2024").Code)
	assert.Equal(t, http.StatusBadRequest, getExport(h, "42", "to=2024-02-30").Code)
	assert.Equal(t, http.StatusBadRequest, getExport(h, "42", "from=2024-03-10&to=2024-03-01").Code)
	assert.Equal(t, http.StatusBadRequest, getExport(h, "42", "format=pdf").Code)
}

func TestExportHandler_UnknownUser(t *testing.T) {
	svc := new(mocks.MockExportService)
	svc.On("Rows", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(nil, domain.ErrUserNotFound)

	w := getExport(handler.NewExportHandler(svc), "7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
