package nakama

import (
	"context"
	"database/sql"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/ports"
	"landlord/internal/ports/natsbus"
	"landlord/internal/ports/redisdir"

	"github.com/heroiclabs/nakama-common/runtime"
)

const botIdentitiesPath = "data/bot_identities.json"

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.Load(env[envConfigPath])
	if err != nil {
		logger.Error("InitModule: Failed to load config: %v", err)
		return err
	}

	roster, err := bot.LoadRoster(botIdentitiesPath)
	if err != nil {
		logger.Warn("InitModule: Could not load bot identities, using generated bots: %v", err)
		roster = bot.NewRoster(nil)
	}
	roster.Provision(ctx, nk, logger)

	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		conn, err := natsbus.Connect(cfg.NATS, logger)
		if err != nil {
			logger.Warn("InitModule: NATS unavailable, events stay local: %v", err)
		} else {
			publisher = natsbus.NewPublisher(conn, cfg.NATS.SubjectPrefix, logger)
		}
	}

	var dir ports.RoomDirectory
	if cfg.Redis.Addr != "" {
		dir = redisdir.New(redisdir.NewClient(cfg.Redis), cfg.Redis.TTL)
	}
	registry := app.NewRegistry(cfg.Redis.Node, dir, logger)

	if err := RegisterRPCs(initializer, registry); err != nil {
		return err
	}

	handler := newMatchHandler(cfg, roster, publisher, registry)
	if err := initializer.RegisterMatch(MatchNameLandlord, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return handler, nil
	}); err != nil {
		return err
	}

	logger.Info("Landlord Go module loaded.")
	return nil
}
