package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Service      string `json:"service"`
	Version      string `json:"version"`
	HolidayCount int    `json:"holidayCount"` // 已配置的节假日数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Service:      "autoworld",
		Version:      Version,
		HolidayCount: h.holidayCount,
	})
}

// ListPrograms 可用程序列表
// GET /api/programs
func (h *Handler) ListPrograms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"programs": Programs})
}
