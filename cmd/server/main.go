package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"study-plan/internal/config"
	"study-plan/internal/handler"
	"study-plan/internal/logger"
	"study-plan/internal/middleware"
	"study-plan/internal/service"
	"study-plan/internal/store/open"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := open.Store(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "driver", cfg.Database.Driver, "err", err)
		os.Exit(1)
	}
	slog.Info("store ready", "driver", cfg.Database.Driver)

	authSvc := service.NewAuthService(st)
	userSvc := service.NewUserService(st, authSvc)
	if cfg.LLM.APIKey == "" {
		slog.Warn("llm api key not set; recommendation requests will fail upstream")
	}
	planner := service.NewPlanner(st, service.NewAIService(cfg.LLM))
	classifier := service.NewClassifierService(cfg.Classifier)

	r := handler.NewRouter(handler.Deps{
		Auth:       authSvc,
		Users:      userSvc,
		Planner:    planner,
		Classifier: classifier,
		JWT:        middleware.NewJWT(cfg.Auth),
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		slog.Error("store close", "err", err)
	}
	slog.Info("server stopped")
}
