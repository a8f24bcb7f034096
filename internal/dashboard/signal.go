// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// handleSignal refreshes the manual-only widgets on SIGUSR1 and re-reads the persisted
// settings and location on SIGHUP.
func (d *Dashboard) handleSignal(ctx context.Context, sig os.Signal) {
	d.logger.Debug("received signal", slog.String("signal", sig.String()))
	switch sig {
	case syscall.SIGUSR1:
		go d.refreshManual(ctx)
	case syscall.SIGHUP:
		d.settings.Reload()
		d.location.Reload()
	}
}
