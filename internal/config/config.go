package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 环境变量
const (
	EnvConfigPath = "AUTOWORLD_CONFIG"
	EnvPort       = "AUTOWORLD_PORT"
	EnvLogLevel   = "AUTOWORLD_LOG_LEVEL"
)

const configFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Calendar CalendarConfig `toml:"calendar"`
	Report   ReportConfig   `toml:"report"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port          int   `toml:"port"`
	DevMode       bool  `toml:"dev_mode"`
	MaxUploadSize int64 `toml:"max_upload_size"` // 字节
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json；为空时开发模式用 text，否则 json
}

// CalendarConfig 节假日（YYYY-MM-DD）
type CalendarConfig struct {
	Holidays []string `toml:"holidays"`
}

// ReportConfig B2C 周报口径
type ReportConfig struct {
	VATRate           float64          `toml:"vat_rate"`
	RoundUnit         float64          `toml:"round_unit"`
	OilServiceFee     float64          `toml:"oil_service_fee"`
	AlignmentFee      float64          `toml:"alignment_fee"`
	TireCategory      string           `toml:"tire_category"`
	ExcludedBrand     string           `toml:"excluded_brand"`
	OtherCategories   []string         `toml:"other_categories"`
	OilCategory       string           `toml:"oil_category"`
	OilFilterKeyword  string           `toml:"oil_filter_keyword"`
	AlignmentCategory string           `toml:"alignment_category"`
	BrandSplits       []BrandSplitRule `toml:"brand_splits"`
}

// BrandSplitRule 品牌按型号关键字拆分
type BrandSplitRule struct {
	Brand      string `toml:"brand"`
	Contains   string `toml:"contains"`
	MatchLabel string `toml:"match_label"`
	OtherLabel string `toml:"other_label"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
	EnvFile       string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:          20262,
			DevMode:       false,
			MaxUploadSize: 32 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Calendar: CalendarConfig{
			Holidays: []string{
				"2025-01-01", "2025-01-28", "2025-01-29", "2025-01-30",
				"2025-03-01", "2025-05-05", "2025-05-06", "2025-06-06",
				"2025-08-15", "2025-10-03", "2025-10-06", "2025-10-07",
				"2025-10-08", "2025-10-09", "2025-12-25",
			},
		},
		Report: ReportConfig{
			VATRate:           1.1,
			RoundUnit:         1000,
			OilServiceFee:     25000,
			AlignmentFee:      3000,
			TireCategory:      "타이어",
			ExcludedBrand:     "기타",
			OtherCategories:   []string{"배터리", "세차권", "와이퍼"},
			OilCategory:       "엔진오일",
			OilFilterKeyword:  "오일필터",
			AlignmentCategory: "휠얼라인먼트",
			BrandSplits: []BrandSplitRule{{
				Brand:      "굿이어",
				Contains:   "쿠퍼",
				MatchLabel: "굿이어 (쿠퍼)",
				OtherLabel: "굿이어 (기타)",
			}},
		},
	}
}

// hasTomlKey 判断配置文件中是否显式写了 section.key
func hasTomlKey(raw map[string]any, section, key string) bool {
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		return false
	}
	_, ok = sectionMap[key]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 配置文件路径：AUTOWORLD_CONFIG 优先，否则为可执行文件同目录下的 config.toml
func DefaultPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvConfigPath)); v != "" {
		return v
	}
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, configFileName)
}

// LoadEnvFile 加载 .env（不存在时忽略），已存在的环境变量不会被覆盖
func LoadEnvFile(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

// LoadConfigWithInfo 加载 .env 与 config.toml，并应用环境变量覆盖
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	envFile, err := LoadEnvFile()
	if err != nil {
		return nil, LoadConfigInfo{}, err
	}
	cfg, info, err := LoadFile(DefaultPath())
	info.EnvFile = envFile
	return cfg, info, err
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
		info.PortSpecified = hasTomlKey(raw, "server", "port")
		// 数组表会追加到已有切片上，文件中写了拆分规则时以文件为准
		if hasTomlKey(raw, "report", "brand_splits") {
			config.Report.BrandSplits = nil
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid %s=%q", EnvPort, v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
	return nil
}

// SaveConfig 保存配置到 config.toml（路径同 DefaultPath）
func SaveConfig(config *AppConfig) (string, error) {
	path := DefaultPath()
	return path, SaveFile(path, config)
}

// SaveFile 保存配置到指定路径
func SaveFile(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
