package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/exporter"
	"github.com/Gt-kt/dealertire-Autoworld/internal/model"
	"github.com/Gt-kt/dealertire-Autoworld/internal/parser"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/excel"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// requestError 带 HTTP 状态码的请求错误
type requestError struct {
	status  int
	message string
	err     error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *requestError) Unwrap() error { return e.err }

// readUpload 读取 multipart 字段 file 并解码为原始表格
func (h *Handler) readUpload(c *gin.Context) (*model.RawTable, string, error) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", &requestError{status: http.StatusBadRequest, message: "未找到上传文件", err: err}
	}

	raw, err := readFileHeader(fh)
	if err != nil {
		return nil, fh.Filename, &requestError{status: http.StatusBadRequest, message: "无法读取 Excel 文件", err: err}
	}
	return raw, fh.Filename, nil
}

func readFileHeader(fh *multipart.FileHeader) (*model.RawTable, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return excel.ReadTable(f, excel.ReadOptions{})
}

// runReport 执行分析；列缺失映射为 422
func (h *Handler) runReport(raw *model.RawTable, progress func(report.ProgressEvent)) (*model.Report, error) {
	rep, err := h.svc.Run(raw, report.RunOptions{Progress: progress})
	if err != nil {
		var schemaErr *parser.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, &requestError{status: http.StatusUnprocessableEntity, message: schemaErr.Error(), err: err}
		}
		return nil, &requestError{status: http.StatusInternalServerError, message: "分析失败", err: err}
	}
	return rep, nil
}

func (h *Handler) renderWorkbook(rep *model.Report) ([]byte, error) {
	f, err := exporter.Build(rep)
	if err != nil {
		return nil, &requestError{status: http.StatusInternalServerError, message: "生成结果文件失败", err: err}
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &requestError{status: http.StatusInternalServerError, message: "写入结果文件失败", err: err}
	}
	return buf.Bytes(), nil
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		status = reqErr.status
		message = reqErr.message
	}

	entry := h.logger.WithField("path", c.Request.URL.Path).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("run failed")
	} else {
		entry.Warn("run rejected")
	}
	c.JSON(status, gin.H{"error": message})
}

// RunB2CWeekly 上传订单表并下载分析结果
// POST /api/run/b2c_weekly_p
func (h *Handler) RunB2CWeekly(c *gin.Context) {
	raw, name, err := h.readUpload(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	rep, err := h.runReport(raw, nil)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	content, err := h.renderWorkbook(rep)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	fileName := exporter.OutputFileName(report.ProgramB2CWeekly, name)
	h.logger.WithFields(logFields(rep)).WithField("file", fileName).Info("workbook sent")
	c.Header("Content-Disposition", contentDisposition(fileName))
	c.Header("X-Run-Id", rep.RunID)
	c.Data(http.StatusOK, xlsxContentType, content)
}

// PreviewB2CWeekly 返回 JSON 格式的分析结果
// POST /api/run/b2c_weekly_p/preview
func (h *Handler) PreviewB2CWeekly(c *gin.Context) {
	raw, _, err := h.readUpload(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	rep, err := h.runReport(raw, nil)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rep)
}

type runProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// StreamB2CWeekly 分析（SSE 进度 + 完成后提供下载地址）
// POST /api/run/b2c_weekly_p/stream
func (h *Handler) StreamB2CWeekly(c *gin.Context) {
	raw, name, err := h.readUpload(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event runProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}
	fail := func(err error) {
		message := err.Error()
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			message = reqErr.message
		}
		h.logger.WithError(err).Warn("stream run failed")
		send(runProgressEvent{Type: "error", Message: message, Data: map[string]any{}, Timestamp: time.Now()})
	}

	send(runProgressEvent{
		Type:      "start",
		Message:   "开始分析",
		Data:      map[string]any{"rows": len(raw.Rows)},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	rep, err := h.runReport(raw, func(p report.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(runProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		fail(err)
		return
	}

	content, err := h.renderWorkbook(rep)
	if err != nil {
		fail(err)
		return
	}

	token := h.downloads.put(exporter.OutputFileName(report.ProgramB2CWeekly, name), content, downloadTTL)
	prefix := strings.TrimSuffix(c.FullPath(), "/run/"+report.ProgramB2CWeekly+"/stream")
	send(runProgressEvent{
		Type:    "done",
		Message: "分析完成",
		Data: map[string]any{
			"percent":     100,
			"runId":       rep.RunID,
			"downloadUrl": fmt.Sprintf("%s/download/%s", prefix, token),
		},
		Timestamp: time.Now(),
	})
}

// Download 下载流式运行的结果文件（一次性）
// GET /api/download/:token
func (h *Handler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.take(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.fileName))
	c.Data(http.StatusOK, xlsxContentType, item.content)
}

// contentDisposition ASCII 文件名兜底 + RFC 5987 UTF-8 文件名
func contentDisposition(fileName string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, fileName)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(fileName))
}

// logFields 运行日志公共字段
func logFields(rep *model.Report) logrus.Fields {
	return logrus.Fields{
		"run_id":  rep.RunID,
		"program": rep.Program,
	}
}
