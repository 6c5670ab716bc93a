package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/bleproxy/internal/proxysim"
	"github.com/srg/bleproxy/pkg/client"
	"github.com/srg/bleproxy/pkg/config"
	"github.com/srg/bleproxy/pkg/rpc"
)

// simFeatures is the capability set the simulated proxy firmware advertises.
const simFeatures = rpc.FeatureActiveConnections |
	rpc.FeatureRemoteCaching |
	rpc.FeaturePairing |
	rpc.FeatureCacheClearing

// target bundles everything a command needs to talk to one peripheral.
type target struct {
	proxy     *proxysim.Proxy
	session   *client.Session
	cache     *client.Cache
	cfg       *config.Config
	logger    *logrus.Logger
	address   string
	cacheFile string
}

// newTarget wires a session against the simulated proxy from the command's
// flags. address may be empty, selecting the loaded (or built-in) peripheral.
func newTarget(cmd *cobra.Command, address string) (*target, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	configLevel := ""
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return nil, err
		}
		configLevel = cfg.LogLevel
	}

	logger, err := configureLogger(cmd, configLevel)
	if err != nil {
		return nil, err
	}

	peripheral := proxysim.DefaultPeripheral()
	if layoutPath, _ := cmd.Flags().GetString("layout"); layoutPath != "" {
		if peripheral, err = proxysim.LoadPeripheral(layoutPath); err != nil {
			return nil, err
		}
	}
	if address == "" {
		address = peripheral.Address
	}

	slots, _ := cmd.Flags().GetInt("slots")
	proxy, err := proxysim.New(slots, peripheral)
	if err != nil {
		return nil, err
	}

	cache := client.NewCache()
	cacheFile, _ := cmd.Flags().GetString("cache-file")
	if cacheFile != "" {
		if cache, err = client.LoadCacheFile(cacheFile); err != nil {
			return nil, err
		}
	}

	session, err := client.NewSession(proxy, proxy, cache, client.Options{
		Address:           address,
		Name:              peripheral.Name,
		DeviceName:        "bleproxy-sim",
		Source:            "bleproxy",
		Features:          simFeatures,
		ConnectTimeout:    cfg.ConnectTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		DisconnectTimeout: cfg.DisconnectTimeout,
		SlotWaitTimeout:   cfg.SlotWaitTimeout,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	return &target{
		proxy:     proxy,
		session:   session,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		address:   address,
		cacheFile: cacheFile,
	}, nil
}

// connect establishes the session, preferring cached topology when a
// persistent cache file is in use.
func (t *target) connect(ctx context.Context) error {
	return t.session.Connect(ctx, t.cacheFile != "")
}

// close tears the session down and persists the cache if requested.
func (t *target) close(ctx context.Context) {
	if t.session.IsConnected() {
		if err := t.session.Disconnect(ctx); err != nil {
			t.logger.WithError(err).Warn("Disconnect failed")
		}
	}
	if err := t.session.Close(); err != nil {
		t.logger.WithError(err).Warn("Session close failed")
	}
	if t.cacheFile != "" {
		if err := t.cache.SaveFile(t.cacheFile); err != nil {
			t.logger.WithError(err).Warn("Failed to persist services cache")
		}
	}
}

// withSession runs fn against a connected session and always cleans up.
func withSession(cmd *cobra.Command, address string, fn func(ctx context.Context, t *target) error) error {
	t, err := newTarget(cmd, address)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := t.connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.address, err)
	}
	defer t.close(ctx)

	return fn(ctx, t)
}
