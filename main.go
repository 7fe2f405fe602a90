package main

import (
	"context"
	"game-lottery/server"
	"game-lottery/server/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"net/http"
	"time"
)

func main() {

	app := fx.New(
		fx.Provide(
			http.NewServeMux,
			config.NewConfiguration,
			config.NewLogger,
			config.NewDatabase,
			config.NewRedisClient,
			config.NewEmailSmtpAuth,
			config.NewArgon2Password,
			config.NewWebSocket,
			config.NewHub,
			config.NewNotifier,
			config.NewLottery,
			config.NewAccountService,
			config.NewServerConfig),
		fx.Invoke(src.NewHTTPServer, src.NewServeMux),

		fx.WithLogger(
			func(logger *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: logger.Named("fx")}
			},
		),
	)

	if err := app.Start(context.Background()); err != nil {
		panic(err)
	}

	// wait for SIGINT or SIGTERM
	<-app.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		panic(err)
	}
}
