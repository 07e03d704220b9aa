package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/config"
	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/auth"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/clients"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/history"
	"github.com/ahmedkatalov/fowWorkProject/app/routes/profile"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// customErrorHandler handles HTTP errors with custom templates
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else if errors.Is(err, database.ErrNotFound) {
		code = fiber.StatusNotFound
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}

	switch code {
	case fiber.StatusNotFound:
		return c.Status(code).Render("404", fiber.Map{
			"Title":       "Страница не найдена",
			"CurrentPage": "",
		})
	case fiber.StatusForbidden:
		return c.Status(code).Render("error", fiber.Map{
			"Title":        "Доступ запрещён",
			"CurrentPage":  "",
			"ErrorCode":    code,
			"ErrorTitle":   "Доступ запрещён",
			"ErrorMessage": "У вас нет прав для этой страницы.",
		})
	case fiber.StatusInternalServerError:
		return c.Status(code).Render("error", fiber.Map{
			"Title":        "Ошибка сервера",
			"CurrentPage":  "",
			"ErrorCode":    code,
			"ErrorTitle":   "Внутренняя ошибка",
			"ErrorMessage": "Не удалось загрузить данные. Попробуйте позже.",
			"ShowRetry":    true,
		})
	default:
		return c.Status(code).Render("error", fiber.Map{
			"Title":        "Ошибка",
			"CurrentPage":  "",
			"ErrorCode":    code,
			"ErrorTitle":   "Произошла ошибка",
			"ErrorMessage": err.Error(),
		})
	}
}

func newEngine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("json", func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	})
	engine.AddFunc("fmtTime", func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.In(time.Local).Format("02.01.2006 15:04")
	})
	engine.Reload(reload)
	engine.Debug(false)
	return engine
}

// app holds everything the server runs.
type app struct {
	http      *fiber.App
	ledger    *services.Ledger
	scheduler *services.Scheduler
}

func newApp(cfg *config.Config, store database.Store, zl *zap.Logger) (*app, error) {
	hour, minute, err := cfg.ReportClock()
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()

	feed := services.NewFeed(store, zl)
	deleter := services.NewDeleteScheduler(store, cfg.UndoWindow, zl)
	ledger := services.NewLedger(store, feed, deleter, loc, zl)
	notifier := services.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, zl)
	if cfg.Telegram.Enabled() {
		zl.Info("daily report goes to telegram", zap.Int64("chat_id", cfg.Telegram.ChatID))
	}
	scheduler := services.NewScheduler(store, notifier, loc, hour, minute, zl)

	server := fiber.New(fiber.Config{
		Views:             newEngine(cfg.TemplatesDir, cfg.Debug),
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		Immutable:         true,
		ErrorHandler:      customErrorHandler,
	})

	server.Use(logger.New())
	server.Use(cors.New())
	server.Static("/static", "./static")

	server.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/today")
	})

	authHandler := auth.NewHandler(store, auth.NewTokens(cfg.JWTSecret), zl)
	auth.SetupAuthRoutes(server, authHandler)
	clients.SetupClientRoutes(server, authHandler, &clients.Handler{Ledger: ledger, Recipients: cfg.Recipients, Logger: zl})
	history.SetupHistoryRoutes(server, authHandler, &history.Handler{Ledger: ledger, Recipients: cfg.Recipients, Logger: zl})
	profile.SetupProfileRoutes(server, authHandler, &profile.Handler{Ledger: ledger, Logger: zl})

	// Catch-all route for 404 errors (must be last)
	server.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})

	return &app{http: server, ledger: ledger, scheduler: scheduler}, nil
}

// run serves until ctx is done, then drains the feed, commits the pending
// delete and shuts the server down.
func (a *app) run(ctx context.Context, addr string, zl *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.ledger.Feed.Run(ctx) })
	g.Go(func() error { return a.scheduler.Run(ctx) })
	g.Go(func() error {
		zl.Info("Server starting", zap.String("addr", addr))
		return a.http.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		a.ledger.Feed.Close()
		a.ledger.Deleter.Stop()
		return a.http.ShutdownWithTimeout(10 * time.Second)
	})
	return g.Wait()
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	time.Local = cfg.Location()
	log.Printf("Application time zone set to: %s", time.Local.String())

	zl, err := config.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	store, closeStore, err := database.Open(cfg, zl)
	if err != nil {
		zl.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	a, err := newApp(cfg, store, zl)
	if err != nil {
		zl.Fatal("failed to build app", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, ":"+cfg.Port, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}
