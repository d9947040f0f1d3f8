package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hivemark/hivemark-back/internal/access"
	"github.com/hivemark/hivemark-back/internal/config"
	"github.com/hivemark/hivemark-back/internal/db"
	"github.com/hivemark/hivemark-back/internal/mailer"
	"github.com/hivemark/hivemark-back/internal/service"
	"github.com/hivemark/hivemark-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() (*zap.SugaredLogger, error) {
				l, err := zap.NewDevelopment()
				if err != nil {
					return nil, err
				}

				return l.Sugar(), nil
			},
			config.NewConfig,
			db.NewGormClient,
			func(cfg *config.Config, logger *zap.SugaredLogger) mailer.Mailer {
				return mailer.NewSMTP(cfg, logger)
			},
			access.NewEngine,
			service.NewAuth,
			service.NewCategory,
			service.NewBookmark,
			service.NewQuote,
			transport.NewHTTPServer,
		),
		fx.Invoke(func(server *transport.HTTPServer) {}),
	)

	app.Run()
}
