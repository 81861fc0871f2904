package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Gt-kt/dealertire-Autoworld/internal/config"
	"github.com/Gt-kt/dealertire-Autoworld/internal/exporter"
	"github.com/Gt-kt/dealertire-Autoworld/internal/server"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/excel"
	"github.com/Gt-kt/dealertire-Autoworld/internal/service/report"
)

var (
	port       = flag.Int("port", 0, "服务端口 (config.toml / AUTOWORLD_PORT 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	configPath = flag.String("config", "", "配置文件路径 (覆盖 AUTOWORLD_CONFIG)")
	logLevel   = flag.String("log-level", "", "日志级别 (覆盖配置文件)")
	noBrowser  = flag.Bool("no-browser", false, "启动后不自动打开浏览器")
	inputPath  = flag.String("input", "", "一次性运行：输入订单 xlsx")
	outputPath = flag.String("output", "", "一次性运行：输出 xlsx（默认与输入同目录）")
	initConfig = flag.Bool("init-config", false, "把当前生效的配置写入 config.toml 后退出")
)

func main() {
	flag.Parse()

	if *configPath != "" {
		os.Setenv(config.EnvConfigPath, *configPath)
	}

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		logrus.WithError(err).Warn("加载配置失败，使用默认配置")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := newLogger(cfg)
	logger.WithFields(logrus.Fields{
		"config":     info.Path,
		"found":      info.FileFound,
		"env_file":   info.EnvFile,
		"holidays":   len(cfg.Calendar.Holidays),
		"dev_mode":   cfg.Server.DevMode,
		"input_mode": *inputPath != "",
	}).Debug("config loaded")

	if *initConfig {
		path, err := config.SaveConfig(cfg)
		if err != nil {
			logger.WithError(err).Error("写入配置失败")
			os.Exit(1)
		}
		logger.WithField("path", path).Info("配置已写入")
		return
	}

	if *inputPath != "" {
		if err := runOnce(cfg, logger, *inputPath, *outputPath); err != nil {
			logger.WithError(err).Error("run failed")
			os.Exit(1)
		}
		return
	}

	serve(cfg, logger)
}

func newLogger(cfg *config.AppConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	format := strings.ToLower(cfg.Log.Format)
	if format == "" {
		format = "json"
		if cfg.Server.DevMode {
			format = "text"
		}
	}
	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// runOnce 读取输入文件、生成结果并写出
func runOnce(cfg *config.AppConfig, logger *logrus.Logger, input, output string) error {
	svc, err := report.NewServiceFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	raw, err := excel.ReadTable(f, excel.ReadOptions{})
	f.Close()
	if err != nil {
		return err
	}

	rep, err := svc.Run(raw, report.RunOptions{
		Progress: func(p report.ProgressEvent) {
			logger.WithFields(logrus.Fields{"percent": p.Percent, "stage": p.Stage}).Info("progress")
		},
	})
	if err != nil {
		return err
	}

	wb, err := exporter.Build(rep)
	if err != nil {
		return err
	}
	defer wb.Close()

	if output == "" {
		output = filepath.Join(filepath.Dir(input), exporter.OutputFileName(report.ProgramB2CWeekly, filepath.Base(input)))
	}
	if err := wb.SaveAs(output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	logger.WithFields(logrus.Fields{
		"run_id": rep.RunID,
		"output": output,
	}).Info("result written")
	return nil
}

func serve(cfg *config.AppConfig, logger *logrus.Logger) {
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("创建服务失败")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("服务启动中")
		if err := srv.Run(addr); err != nil {
			logger.WithError(err).Fatal("服务启动失败")
		}
	}()

	if !cfg.Server.DevMode && !*noBrowser {
		if err := openBrowser(url); err != nil {
			logger.WithField("url", url).Warn("无法自动打开浏览器，请手动访问")
		}
	} else {
		logger.WithField("url", url).Info("请访问")
	}

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务")
}
