// Command ddzsim plays batches of Dou Di Zhu rounds between configured seat
// providers and reports how often each side wins.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"
	"landlord/internal/logging"
	"landlord/internal/ports"
	"landlord/internal/ports/natsbus"
	"landlord/internal/ports/redisdir"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type stats struct {
	mu          sync.Mutex
	games       int
	landlordWon int
	redeals     int
	bidTotal    int
	seatWins    [domain.Seats]int
}

func (s *stats) record(res app.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games++
	s.redeals += res.Redeals
	s.bidTotal += res.Bid
	s.seatWins[res.Winner]++
	if res.LandlordWon {
		s.landlordWon++
	}
}

func (s *stats) print() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.games == 0 {
		fmt.Println("no games finished")
		return
	}
	pct := func(n int) float64 { return 100 * float64(n) / float64(s.games) }
	fmt.Printf("games:        %d\n", s.games)
	fmt.Printf("landlord won: %d (%.1f%%)\n", s.landlordWon, pct(s.landlordWon))
	fmt.Printf("farmers won:  %d (%.1f%%)\n", s.games-s.landlordWon, pct(s.games-s.landlordWon))
	fmt.Printf("average bid:  %.2f\n", float64(s.bidTotal)/float64(s.games))
	fmt.Printf("redeals:      %d\n", s.redeals)
	for seat, n := range s.seatWins {
		fmt.Printf("seat %d wins:  %d (%.1f%%)\n", seat, n, pct(n))
	}
}

func main() {
	// .env is optional.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("LANDLORD_CONFIG"), "path to a YAML or JSON config file")
	games := flag.Int("games", 0, "number of rounds to play (overrides game.games)")
	seed := flag.Int64("seed", 0, "base random seed (overrides game.seed)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ddzsim: %v\n", err)
		os.Exit(1)
	}
	if *games > 0 {
		cfg.Game.Games = *games
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if cfg.Game.Seed == 0 {
		cfg.Game.Seed = time.Now().UnixNano()
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("ddzsim: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger runtime.Logger) error {
	var dir ports.RoomDirectory
	if cfg.Redis.Addr != "" {
		client := redisdir.NewClient(cfg.Redis)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		dir = redisdir.New(client, cfg.Redis.TTL)
		logger.Info("Rooms registered in redis at %s", cfg.Redis.Addr)
	}

	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		conn, err := natsbus.Connect(cfg.NATS, logger)
		if err != nil {
			return err
		}
		defer conn.Drain()
		publisher = natsbus.NewPublisher(conn, cfg.NATS.SubjectPrefix, logger)
		logger.Info("Publishing events to %s under %s", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	}

	registry := app.NewRegistry(cfg.Redis.Node, dir, logger)
	opts := app.TableOptions{
		Timeout:   cfg.Game.DecisionTimeout,
		Ally:      bot.AllyPolicyFrom(cfg.Ally),
		Publisher: publisher,
	}

	var st stats
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Game.Parallel > 0 {
		g.SetLimit(cfg.Game.Parallel)
	}
	for i := 0; i < cfg.Game.Games; i++ {
		g.Go(func() error {
			res, err := playOne(gctx, cfg, registry, opts, cfg.Game.Seed+int64(i), logger)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			st.record(res)
			return nil
		})
	}
	err := g.Wait()
	st.print()
	return err
}

// playOne plays a round with fresh providers, since script seats are not
// safe to share between goroutines.
func playOne(ctx context.Context, cfg *config.Config, registry *app.Registry, opts app.TableOptions, seed int64, logger runtime.Logger) (app.Result, error) {
	providers, err := bot.NewProviders(cfg, logger)
	if err != nil {
		return app.Result{}, err
	}
	defer closeProviders(providers)

	svc := app.NewService(rand.New(rand.NewSource(seed)), cfg.Game.MaxRedeals)
	table, err := registry.Create(ctx, func(roomID string) (*app.Table, error) {
		return app.NewTable(domain.NewGame(roomID), svc, providers, opts, logger)
	})
	if err != nil {
		return app.Result{}, err
	}
	defer registry.Remove(ctx, table.Game.ID)

	res, err := table.Run(ctx)
	if err != nil {
		return app.Result{}, err
	}
	logger.Debug("Game %s: seat %d won, landlord %d, bid %d", table.Game.ID, res.Winner, res.Landlord, res.Bid)
	return res, nil
}

func closeProviders(providers []ports.DecisionProvider) {
	for _, p := range providers {
		if c, ok := p.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
