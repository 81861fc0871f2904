package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/service/report"
)

// Version 服务版本
const Version = "1.0.0"

// Program 可运行的程序
type Program struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Programs 当前提供的程序列表
var Programs = []Program{
	{ID: report.ProgramB2CWeekly, Name: "B2C Weekly_P"},
}

// Handler V1 API 处理器
type Handler struct {
	svc           *report.Service
	holidayCount  int
	maxUploadSize int64
	downloads     *downloadStore
	logger        logrus.FieldLogger
}

// Options 处理器选项
type Options struct {
	HolidayCount  int
	MaxUploadSize int64 // 字节，0 表示不限制
	Logger        logrus.FieldLogger
}

// NewHandler 创建 V1 API 处理器
func NewHandler(svc *report.Service, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		svc:           svc,
		holidayCount:  opts.HolidayCount,
		maxUploadSize: opts.MaxUploadSize,
		downloads:     newDownloadStore(),
		logger:        logger,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/programs", h.ListPrograms)

	// B2C 周报
	run := router.Group("/run/" + report.ProgramB2CWeekly)
	run.POST("", h.RunB2CWeekly)
	run.POST("/preview", h.PreviewB2CWeekly)
	run.POST("/stream", h.StreamB2CWeekly)

	router.GET("/download/:token", h.Download)
}
