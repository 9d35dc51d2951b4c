package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/journal/internal/config"
	http_controllers "github.com/mrlokans/journal/internal/http"
	"github.com/mrlokans/journal/internal/logging"
	"github.com/mrlokans/journal/internal/prompts"
	"github.com/mrlokans/journal/internal/scheduler"
	"github.com/mrlokans/journal/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Infof("Starting Journal v%s", version)

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Errorf("Error closing database: %v", err)
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Errorf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewSweepMediaQueue(app.Sweeper))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var sweepScheduler *scheduler.MediaSweepScheduler
	if cfg.MediaSweep.Enabled {
		sweepScheduler = scheduler.NewMediaSweepScheduler(cfg.MediaSweep.Schedule, sweepTrigger(app, taskClient))
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Errorf("Failed to start media sweep scheduler: %v", err)
			sweepScheduler = nil
		}
	}

	var questionClient prompts.Client
	if cfg.Prompts.APIKey != "" {
		questionClient = prompts.NewAnthropicClient(cfg.Prompts.APIURL, cfg.Prompts.APIKey, cfg.Prompts.Model)
	} else {
		log.Warn("ANTHROPIC_API_KEY is not set, question generation will return the fallback question")
	}

	routerCfg := http_controllers.RouterConfig{
		Entries:        app.Entries,
		Tags:           app.Tags,
		Media:          app.Media,
		Health:         app.Database,
		Questions:      prompts.NewService(questionClient),
		OwnerID:        cfg.Owner.ID,
		MediaDir:       app.MediaDir,
		MediaURLPrefix: cfg.Media.URLPrefix,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweepScheduler != nil {
			sweepScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// sweepTrigger enqueues a sweep when the task queue runs, otherwise it
// sweeps inline on the scheduler goroutine.
func sweepTrigger(app *App, taskClient *tasks.Client) scheduler.SweepTrigger {
	if taskClient != nil {
		return func(ctx context.Context) error {
			_, err := taskClient.Add(tasks.SweepMediaTask{Trigger: "schedule"}).Save()
			return err
		}
	}
	return func(ctx context.Context) error {
		_, err := app.Sweeper.Run(ctx)
		return err
	}
}
