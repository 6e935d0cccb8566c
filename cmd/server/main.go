package main

import (
	"context"
	"os"
	"time"

	"github.com/Luismorlan/newsportal/app_setting"
	"github.com/Luismorlan/newsportal/digest"
	"github.com/Luismorlan/newsportal/dispatcher"
	"github.com/Luismorlan/newsportal/engine"
	"github.com/Luismorlan/newsportal/notifier"
	"github.com/Luismorlan/newsportal/scheduler"
	"github.com/Luismorlan/newsportal/server"
	"github.com/Luismorlan/newsportal/store"
	"github.com/Luismorlan/newsportal/utils"
	"github.com/Luismorlan/newsportal/utils/dotenv"
	. "github.com/Luismorlan/newsportal/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func settingPath() string {
	if path := os.Getenv("PORTAL_SETTING_PATH"); path != "" {
		return path
	}
	return "cmd/server/setting.yaml"
}

func main() {
	defer Log.Info("api server shutdown")

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	setting := app_setting.ParsePortalAppSetting(settingPath())

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	quota, err := utils.GetRedisQuotaStore()
	if err != nil {
		Log.Fatal("fail to connect redis : ", err)
	}
	st := store.NewStoreWithQuota(db, quota)

	mailer, err := notifier.NewEmailNotifierFromEnv()
	if err != nil {
		Log.Fatal("fail to configure mail transport : ", err)
	}

	eventbus := engine.NewEventBus()

	composer := digest.NewComposer(st, setting.SITE_BASE_URL)
	pipeline := digest.NewPipeline(st, composer, mailer, Log.Writer())

	dispatchDelay := time.Duration(setting.DISPATCH_DELAY_SECOND) * time.Second
	if dispatchDelay == 0 {
		dispatchDelay = dispatcher.DefaultDispatchDelay
	}

	// Initialize all engine modules here.
	modules := []engine.Module{
		// Weekly trigger fires the digest pipeline at the configured weekly
		// instant, at most once per calendar week.
		scheduler.NewWeeklyTrigger(
			scheduler.Config{
				Name:         "weekly_trigger",
				Weekday:      time.Weekday(setting.DIGEST_WEEKDAY),
				Hour:         setting.DIGEST_HOUR,
				Minute:       setting.DIGEST_MINUTE,
				PollInterval: time.Duration(setting.SCHEDULER_POLL_INTERVAL_SECOND) * time.Second,
				Cooldown:     time.Duration(setting.SCHEDULER_COOLDOWN_SECOND) * time.Second,
				ErrorBackoff: time.Duration(setting.SCHEDULER_ERROR_BACKOFF_SECOND) * time.Second,
			},
			st,
			scheduler.NewRealClock(),
			pipeline.Run,
		),
		// Dispatcher listens for post-created events on the EventBus and fans
		// each new post out to category subscribers.
		dispatcher.NewDispatcher(
			dispatcher.Config{
				Name:          "post_dispatcher",
				BaseURL:       setting.SITE_BASE_URL,
				DispatchDelay: dispatchDelay,
			},
			st,
			mailer,
			eventbus,
		),
	}

	eng := engine.NewEngine(modules, eventbus)
	go eng.Run(context.Background())

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())

	server.RegisterRoutes(router, server.NewServer(st, eventbus, setting.DISABLE_IMMEDIATE_NOTIFY))

	Log.Info("api server starts up")
	router.Run(":8080")
}
