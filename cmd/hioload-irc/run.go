// File: cmd/hioload-irc/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/client"
	"github.com/momentics/hioload-irc/connection"
	"github.com/momentics/hioload-irc/control"
	"github.com/momentics/hioload-irc/internal/logging"
	"github.com/momentics/hioload-irc/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to every configured server and run the reactor",
	RunE:  runReactor,
}

func runReactor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile, logLevel)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.Servers) == 0 {
		return fmt.Errorf("%w: no servers in %s", control.ErrInvalidConfig, cfgFile)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := control.NewMetrics(reg)
	if err != nil {
		return err
	}
	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen, reg, log)
	}

	opts := []client.Option{
		client.WithLogger(log),
		client.WithMetrics(metrics),
		client.WithQueueCapacity(cfg.Reactor.QueueCapacity),
		client.WithMaxSessions(cfg.Reactor.MaxSessions),
		client.WithEventCapacity(cfg.Reactor.EventCapacity),
	}
	if cfg.Reactor.PinCPU != nil {
		opts = append(opts, client.WithCPU(*cfg.Reactor.PinCPU))
	}
	r, err := client.New(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := dialAll(ctx, cfg.Servers, log)
	if err != nil {
		return err
	}

	names := make(map[string]client.SessionID, len(cfg.Servers))
	byIndex := make([]string, len(cfg.Servers))
	channels := make([][]string, len(cfg.Servers))
	handle := r.Handle()
	for i, sc := range cfg.Servers {
		b := session.New().
			Connection(conns[i]).
			Nickname(sc.Nickname).
			Username(sc.Username).
			Realname(sc.Realname).
			Password(sc.Password).
			Logger(log)
		id, err := r.AddSessionBuilder(b)
		if err != nil {
			return fmt.Errorf("server %s: %w", sc.Name, err)
		}
		names[sc.Name] = id
		byIndex[id.Index()] = sc.Name
		channels[id.Index()] = sc.Channels
	}

	go bridge(os.Stdin, handle, names, log)

	done := make(chan error, 1)
	h := client.Chain(printer(byIndex, log),
		client.Recovery(log),
		client.JoinOnWelcome(func(id client.SessionID) []string { return channels[id.Index()] }))
	go func() { done <- r.Run(h) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	}
}

// loadConfig reads path and applies the --log-level override, validating
// the result again so the override is checked like the file.
func loadConfig(path, level string) (*control.Config, error) {
	cfg, err := control.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if level == "" {
		return cfg, nil
	}
	cfg.Log.Level = level
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printer logs every message; it never reacts.
func printer(names []string, log *zap.Logger) client.Handler {
	return func(ctx *client.MessageContext, msg api.Message, err error) api.Reaction {
		server := names[ctx.Session.Index()]
		if err != nil {
			log.Warn("receive", zap.String("server", server), zap.Error(err))
			return api.NoReaction
		}
		log.Info(msg.String(), zap.String("server", server))
		return api.NoReaction
	}
}

// dialAll connects to every server in parallel. Connections keep the
// configuration order.
func dialAll(ctx context.Context, servers []control.ServerConfig, log *zap.Logger) ([]connection.GenericConnection, error) {
	conns := make([]connection.GenericConnection, len(servers))
	g, gctx := errgroup.WithContext(ctx)
	for i, sc := range servers {
		i, sc := i, sc
		g.Go(func() error {
			c, err := dial(gctx, sc, log)
			if err != nil {
				return fmt.Errorf("server %s: %w", sc.Name, err)
			}
			conns[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, c := range conns {
			if c.Kind() != connection.KindNone {
				_ = c.Close()
			}
		}
		return nil, err
	}
	return conns, nil
}

func dial(ctx context.Context, sc control.ServerConfig, log *zap.Logger) (connection.GenericConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, sc.DialTimeout)
	defer cancel()

	opts := []connection.Option{connection.WithLogger(log.With(zap.String("server", sc.Name)))}
	if !sc.TLS {
		p, err := connection.DialPlaintext(ctx, sc.Addr, opts...)
		if err != nil {
			return connection.GenericConnection{}, err
		}
		return connection.FromPlaintext(p), nil
	}

	tlsCfg := &tls.Config{
		ServerName:         sc.ServerName,
		InsecureSkipVerify: sc.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	t, err := connection.DialTLS(ctx, sc.Addr, tlsCfg, opts...)
	if err != nil {
		return connection.GenericConnection{}, err
	}
	return connection.FromTLS(t), nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", zap.Error(err))
	}
}
