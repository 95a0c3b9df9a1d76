package main

import (
	"context"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/iurnickita/shopadmin/internal/auth"
	"github.com/iurnickita/shopadmin/internal/config"
	"github.com/iurnickita/shopadmin/internal/handler"
	"github.com/iurnickita/shopadmin/internal/logger"
	loggerConfig "github.com/iurnickita/shopadmin/internal/logger/config"
	"github.com/iurnickita/shopadmin/internal/password"
	"github.com/iurnickita/shopadmin/internal/service"
	"github.com/iurnickita/shopadmin/internal/session"
	"github.com/iurnickita/shopadmin/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// логер на время чтения настроек, уровень из них еще неизвестен
	bootlog, err := logger.NewZapLog(loggerConfig.Config{LogLevel: "info"})
	if err != nil {
		return err
	}
	cfg, err := config.GetConfig(bootlog)
	if err != nil {
		return err
	}

	zaplog, err := logger.NewZapLog(cfg.Logger)
	if err != nil {
		return err
	}
	defer zaplog.Sync()

	// Без заданных ключей сессии и токены не переживут перезапуск
	sessionKey := []byte(cfg.Handler.SessionKey)
	if len(sessionKey) == 0 {
		sessionKey, err = session.GenerateKey()
		if err != nil {
			return err
		}
		zaplog.Warn("SESSION_KEY is not set, sessions are reset on restart")
	}
	if cfg.Auth.JWTSecret == "" {
		secret, err := session.GenerateKey()
		if err != nil {
			return err
		}
		cfg.Auth.JWTSecret = hex.EncodeToString(secret)
		zaplog.Warn("JWT_SECRET is not set, logins are reset on restart")
	}

	store, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewSessions(sessionKey, cfg.Handler.SecureCookie)
	encoder := password.NewEncoder(0)

	auth := auth.NewAuth(cfg.Auth, store, sessions, encoder, zaplog)
	service, err := service.NewService(cfg.Service, store, zaplog, service.WithEncoder(encoder))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return handler.Serve(ctx, cfg.Handler, auth, service, sessions, zaplog)
}
