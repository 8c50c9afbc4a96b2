package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"techstore/internal/bot"
	"techstore/internal/catalog"
	"techstore/internal/config"
	"techstore/internal/http/handlers"
	applog "techstore/internal/log"
	"techstore/internal/repos"
	"techstore/internal/services"
	"techstore/internal/telegram"
	"techstore/internal/texts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot poller and the HTTP server",
	RunE:  runServe,
}

func setup() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if _, err := applog.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		return cfg, err
	}
	applog.Info(nil, "config.load", cfg.Fields())
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := catalog.Load(cfg.CatalogPath, cfg.CatalogSheet)
	if err != nil {
		return err
	}
	tx, err := texts.Load(cfg.TextsPath)
	if err != nil {
		return err
	}
	client, api, err := telegram.New(cfg.BotToken)
	if err != nil {
		return err
	}

	users := repos.NewUserRepo(db)
	sel := services.NewSelectionStore(cat, cfg.SessionMax, cfg.SessionTTL)
	h := &bot.Handler{
		Msg:       client,
		Texts:     tx,
		Catalog:   cat,
		Users:     users,
		Cart:      services.NewCartService(repos.NewCartRepo(db), users, cat),
		Selection: sel,
		Orders:    services.NewOrderService(cat, repos.NewRequestRepo(db)),
		AdminID:   cfg.AdminID,
		Manager:   cfg.ManagerContact,
	}
	h.Broadcast = services.NewBroadcastService(users, bot.BroadcastSender{Msg: client}, cfg.BroadcastRate)
	h.Broadcast.Done = h.BroadcastDone
	defer h.Broadcast.Stop()

	app := handlers.NewApp(handlers.NewDeps(db, cat, sel, h.Broadcast, cfg.AdminTokenHash))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		applog.Info(nil, "bot.poll.start", map[string]any{"admin_id": cfg.AdminID})
		err := telegram.Poll(ctx, api, cfg.PollTimeout, h.Handle)
		stop()
		return err
	})
	g.Go(func() error {
		applog.Info(nil, "http.listen", map[string]any{"port": cfg.Port})
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	err = g.Wait()
	applog.Info(nil, "server.stop", map[string]any{"pending_broadcasts": h.Broadcast.Pending()})
	return err
}
