// alerts envía los resúmenes de bajo stock y de vencimientos por correo.
// Pensado para cron: con Redis configurado toma un lock para no correr dos veces en paralelo.
//
// Uso: go run ./cmd/alerts [--days 7] [--to gerente@tienda.com] [--only low|expiry|all] [--owner <id>]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stocker-api/internal/application/alerts"
	"github.com/jhoicas/stocker-api/internal/infrastructure/mail"
	infraredis "github.com/jhoicas/stocker-api/internal/infrastructure/redis"
	"github.com/jhoicas/stocker-api/internal/infrastructure/storage"
	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

const (
	lockKey = infraredis.KeyPrefix + "alerts"
	lockTTL = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("alerts_job")
	ctx, cancel := context.WithTimeout(context.Background(), lockTTL)
	defer cancel()

	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		release, err := infraredis.NewLocker(rdb).Obtain(ctx, lockKey, lockTTL)
		if errors.Is(err, infraredis.ErrNotObtained) {
			log.Info().Msg("otra ejecución en curso; nada que hacer")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("lock de alertas")
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				log.Warn().Err(err).Msg("liberar lock de alertas")
			}
		}()
	}

	repos, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de datos")
	}
	defer repos.Close()

	digest := alerts.NewDigestUseCase(repos.Items, mail.New(cfg.SMTP, log), cfg.Alerts.ManagerEmail, cfg.App.Location(), log)
	res, err := run(ctx, opts, digest)
	if err != nil {
		log.Error().Err(err).Msg("envío de alertas")
		os.Exit(1)
	}
	fmt.Println(res.String())
}
