package v1

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Gt-kt/dealertire-Autoworld/internal/calendar"
	"github.com/Gt-kt/dealertire-Autoworld/internal/config"
	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/report"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()

	cfg := config.DefaultConfig()
	cal, err := calendar.Parse(cfg.Calendar.Holidays)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := NewHandler(report.NewService(cal, report.SettingsFromConfig(cfg.Report), logger), Options{
		HolidayCount:  cal.HolidayCount(),
		MaxUploadSize: 8 << 20,
		Logger:        logger,
	})
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r, h
}

func orderWorkbook(t *testing.T, header []string, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &hdr))
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func sampleWorkbook(t *testing.T) []byte {
	return orderWorkbook(t, parser.RequiredColumns,
		[]interface{}{"타이어", "한국", "온라인", "벤투스", 4, 440000, 550000, 0, "20251014", "O1", "C1"},
		[]interface{}{"타이어", "한국", "매장", "벤투스", 2, 220000, 275000, 0, "20251018", "O2", "C2"},
		[]interface{}{"휠얼라인먼트", "", "매장", "얼라인먼트", 1, 0, 0, 0, "20251015", "O3", "C3"},
	)
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func postFile(t *testing.T, r http.Handler, path, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, "file", fileName, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetStatusAndPrograms(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 15, status.HolidayCount)
	assert.Equal(t, Version, status.Version)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/programs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), report.ProgramB2CWeekly)
}

func TestRunB2CWeekly_ReturnsWorkbook(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := postFile(t, r, "/api/run/b2c_weekly_p", "weekly.xlsx", sampleWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "processed_b2c_weekly_p_weekly.xlsx")
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))

	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{model.SheetAnalysis, model.SheetPrediction}, wb.GetSheetList())

	title, err := wb.GetCellValue(model.SheetAnalysis, "A1")
	require.NoError(t, err)
	assert.Equal(t, report.TitleTireByChannel, title)
}

func TestRunB2CWeekly_Errors(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	// 缺少 file 字段
	req := httptest.NewRequest(http.MethodPost, "/api/run/b2c_weekly_p", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 不是 xlsx
	rec = postFile(t, r, "/api/run/b2c_weekly_p", "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 缺少必填列
	content := orderWorkbook(t, []string{"상품타입", "브랜드"}, []interface{}{"타이어", "한국"})
	rec = postFile(t, r, "/api/run/b2c_weekly_p", "weekly.xlsx", content)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), parser.ColOrderDate)
	assert.Contains(t, rec.Body.String(), parser.ColCustomerID)
}

func TestPreviewB2CWeekly(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := postFile(t, r, "/api/run/b2c_weekly_p/preview", "weekly.xlsx", sampleWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, report.ProgramB2CWeekly, rep.Program)
	assert.Equal(t, 18, rep.Month.LastObservedDay)
	assert.Len(t, rep.Historical, 7)
	assert.Len(t, rep.Forecasts, 7)
}

func TestStreamB2CWeekly_ThenDownload(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := postFile(t, r, "/api/run/b2c_weekly_p/stream", "weekly.xlsx", sampleWorkbook(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []runProgressEvent
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev runProgressEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	require.NotEmpty(t, events)
	assert.Equal(t, "start", events[0].Type)

	last := events[len(events)-1]
	require.Equal(t, "done", last.Type)
	data, ok := last.Data.(map[string]interface{})
	require.True(t, ok)
	url, _ := data["downloadUrl"].(string)
	require.True(t, strings.HasPrefix(url, "/api/download/"), url)

	dl := httptest.NewRecorder()
	r.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, xlsxContentType, dl.Header().Get("Content-Type"))

	// 一次性下载
	again := httptest.NewRecorder()
	r.ServeHTTP(again, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	got := contentDisposition("processed_b2c_weekly_p_주문.xlsx")
	assert.Equal(t,
		`attachment; filename="processed_b2c_weekly_p___.xlsx"; filename*=UTF-8''processed_b2c_weekly_p_%EC%A3%BC%EB%AC%B8.xlsx`,
		got)
}
