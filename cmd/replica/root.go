// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autonity/tendermint-smr/accountability"
	"github.com/autonity/tendermint-smr/config"
	"github.com/autonity/tendermint-smr/consensus/tendermint/core"
	"github.com/autonity/tendermint-smr/consensus/tendermint/events"
	"github.com/autonity/tendermint-smr/consensus/tendermint/message"
	"github.com/autonity/tendermint-smr/ingress"
)

func newRootCmd() *cobra.Command {
	cfg := config.Defaults

	cmd := &cobra.Command{
		Use:   "replica",
		Short: "Run a Tendermint-style SMR replica process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory for replica bookkeeping")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "enable the full self-check invariant set")
	flags.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "address the driver/timer transport listens on")

	var configFile string
	flags.StringVar(&configFile, "config", "", "path to a TOML config file overriding the defaults above")
	cobra.OnInitialize(func() {
		if configFile == "" {
			return
		}
		if err := config.LoadFile(configFile, &cfg); err != nil {
			log.Warn("failed to load config file", "path", configFile, "err", err)
		}
	})

	return cmd
}

// run wires the Machine to its ingress and egress and blocks until the
// process receives SIGINT/SIGTERM or a component fails.
func run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outbox := events.NewOutbox()
	defer outbox.Close()

	machine := core.New(outbox, cfg.Strict)

	triggers := make(chan message.Trigger, 64)
	dedup := ingress.NewDedup(256)

	heights := newBootstrapHeightSource(cfg)
	heightWatcher := ingress.NewHeightWatcher(heights, triggers)
	heightWatcher.Run()
	defer heightWatcher.Stop()

	detections := make(chan accountability.Detection, 16)
	watcher := accountability.NewWatcher(machine, detections)
	watcher.Run()
	defer watcher.Stop()

	g, ctx := errgroup.WithContext(ctx)

	driverCh := make(chan message.Event, 64)
	driverSub := outbox.SubscribeDriver(driverCh)
	g.Go(func() error { return consume("driver", ctx, driverCh, driverSub) })

	timerCh := make(chan message.Event, 64)
	timerSub := outbox.SubscribeTimer(timerCh)
	g.Go(func() error { return consume("timer", ctx, timerCh, timerSub) })

	g.Go(func() error { return proofLogger(ctx, watcher.Proofs()) })

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case t := <-triggers:
				if dedup.Seen(t) {
					log.Debug("repeated trigger", "trigger", t)
				}
				if err := machine.Process(t); err != nil {
					log.Error("trigger rejected", "trigger", t, "err", err)
					select {
					case detections <- accountability.Detection{Trigger: t, Err: err}:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

func consume(name string, ctx context.Context, ch <-chan message.Event, sub event.Subscription) error {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case e := <-ch:
			log.Info("event received", "stream", name, "event", e)
		}
	}
}

func proofLogger(ctx context.Context, proofs <-chan *accountability.Proof) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-proofs:
			log.Crit("accountability proof raised, halting", "proof", p)
		}
	}
}
