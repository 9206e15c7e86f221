/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/ledger-bridge/internal/api"
	"github.com/mautops/ledger-bridge/internal/config"
	"github.com/mautops/ledger-bridge/internal/container"
	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/metrics"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the callback server",
	Long: `Start the Ledger Bridge HTTP server.
The server answers form, widget and search callbacks of the task management app
and processes submissions one at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		log, err := logger.NewFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if config.IsProduction(cfg) {
			gin.SetMode(gin.ReleaseMode)
		}
		if cfg.Ledger.WorkspaceID == 0 {
			log.Warn("ledger.workspace_id is not set, submissions will fail until it is configured")
		}

		// 2. 初始化容器
		ctr, err := container.NewContainer(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 3. 追踪
		var tracing *api.Tracing
		if cfg.Tracing.Enabled {
			tracing, err = api.InitTracing(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
			if err != nil {
				return fmt.Errorf("failed to initialize tracing: %w", err)
			}
		}

		// 4. 配置热更新
		if path := configFileUsed(configPath); path != "" {
			watcher := config.NewConfigWatcher(cfg, path)
			watcher.OnConfigChange(ctr.ApplyConfig)
			watcher.OnError(func(err error) {
				log.WithError(err).Error("failed to reload config")
			})
			if err := watcher.Start(); err != nil {
				log.WithError(err).Warn("config hot reload disabled")
			} else {
				defer watcher.Stop()
			}
		}

		// 5. 指标收集
		collector := metrics.NewCollector(ctr.DB(), 30*time.Second)
		collector.Start()
		defer collector.Stop()

		// 6. 设置路由
		router := api.SetupRoutes(api.RouterDeps{
			Config:  cfg,
			Logger:  log,
			DB:      ctr.DB(),
			Queue:   ctr.Serializer(),
			Tracing: tracing,
			Forms: api.NewFormController(
				ctr.FormBuilder(),
				ctr.TaskResolver(),
				ctr.UserService(),
				ctr.SubmissionService(),
				ctr.WorksheetService(),
				log,
			),
			Search:      api.NewSearchController(ctr.FormBuilder()),
			Submissions: api.NewSubmissionController(ctr.QueryService()),
		})
		router.NoRoute(func(c *gin.Context) {
			api.Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
		})

		// 7. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			log.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
		}

		log.Info("shutting down server")

		// 优雅关闭: 先停止接收请求,再等待队列中的提交完成
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server forced to shutdown")
		}
		if err := tracing.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to flush traces")
		}

		log.Info("server exited")
		return nil
	},
}

// configFileUsed 返回需要监听的配置文件路径
func configFileUsed(configPath string) string {
	if configPath != "" {
		return configPath
	}
	for _, candidate := range []string{"config.yaml", "config/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8000, "Server port")
}
