// Command titanium runs a Dragonfly server with Titanium loaded, an example
// module and the reward sync hub.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oriumgames/titanium"
	"github.com/oriumgames/titanium/reward"
	"github.com/oriumgames/titanium/reward/store"
	"github.com/oriumgames/titanium/wshub"
)

func main() {
	configPath := flag.String("config", "titanium.yml", "path to the Titanium configuration file")
	flag.Parse()

	cfg, err := titanium.LoadConfig(*configPath)
	if err != nil {
		slog.Error("titanium: invalid configuration", "err", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(log)
	chat.Global.Subscribe(chat.StdoutSubscriber{})

	rewards, err := registerRewards(cfg)
	if err != nil {
		log.Error("titanium: failed to register rewards", "err", err)
		os.Exit(1)
	}
	backend, err := store.Open(cfg.Rewards.Backend, cfg.Rewards.Path)
	if err != nil {
		log.Error("titanium: failed to open reward store", "backend", cfg.Rewards.Backend, "err", err)
		os.Exit(1)
	}
	metrics := reward.NewMetrics()
	hub := wshub.New(log)
	svc := reward.NewService(rewards, backend,
		reward.WithLogger(log),
		reward.WithMetrics(metrics),
		reward.WithBroadcaster(hub),
	)

	httpSrv := serveSync(cfg.Sync.Addr, hub, metrics, log)

	conf, err := server.DefaultConfig().Config(log)
	if err != nil {
		log.Error("titanium: failed to create server config", "err", err)
		os.Exit(1)
	}
	srv := conf.New()
	srv.CloseOnProgramEnd()

	ctrl := titanium.NewBuilder().
		Config(cfg).
		Logger(log).
		Module(titanium.RewardsModule(svc, cfg)).
		Module(exampleModule()).
		Init(srv.World(), srv.Nether(), srv.End())

	srv.Listen()
	for p := range srv.Accept() {
		ctrl.Join(p)
	}

	ctrl.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		log.Error("titanium: failed to save rewards on shutdown", "err", err)
	}
	if httpSrv != nil {
		_ = httpSrv.Shutdown(ctx)
	}
}

// registerRewards registers the rewards of this server.
func registerRewards(cfg titanium.Config) (*reward.Manager, error) {
	supporters, err := reward.ParseAllowlist(cfg.Rewards.Supporters)
	if err != nil {
		return nil, err
	}
	m := reward.NewManager()
	defs := []struct {
		id      string
		rule    reward.Rule
		options []string
	}{
		{"welcome_hat", reward.Everyone{}, []string{"plain", "festive"}},
		{"supporter_cape", supporters, []string{"red", "blue", "gold"}},
		{"event_badge", reward.Nobody{}, []string{"bronze", "silver", "gold"}},
	}
	for _, d := range defs {
		def, err := reward.NewDefinition(reward.MustIdentifier(d.id), d.rule, d.options...)
		if err != nil {
			return nil, err
		}
		if err := m.Register(def); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// exampleModule shows features toggled from configuration.
func exampleModule() *titanium.Module {
	noSticks := titanium.NewFeature("no_sticks").
		Describe("Players cannot pick up sticks").
		Subscribe(titanium.On[titanium.EventItemPickup]().
			Filter(func(_ *titanium.Session, e *titanium.EventItemPickup) bool {
				_, ok := e.Item.Item().(item.Stick)
				return ok
			}).
			Cancel())

	welcome := titanium.NewFeature("welcome").
		Describe("Logs reward syncs of players holding rewards").
		Disabled().
		Subscribe(titanium.On[titanium.EventRewardSync]().
			Filter(func(s *titanium.Session, _ *titanium.EventRewardSync) bool {
				return len(s.OwnRewards()) > 0
			}).
			Process(func(s *titanium.Session, _ *titanium.EventRewardSync) {
				s.Controller().Logger().Debug("titanium: rewards synced", "player", s.Name(), "rewards", len(s.OwnRewards()))
			}))

	return titanium.NewModule("example").
		Describe("Small examples of Titanium features").
		Feature(noSticks, welcome)
}

// serveSync serves the reward websocket hub and the metrics endpoint. It
// returns nil if addr is empty.
func serveSync(addr string, hub *wshub.Hub, metrics *reward.Metrics, log *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/rewards", hub.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	httpSrv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("titanium: serving reward sync", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("titanium: sync server stopped", "err", err)
		}
	}()
	return httpSrv
}
