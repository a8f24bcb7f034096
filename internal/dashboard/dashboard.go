// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package dashboard implements the client session that drives every widget of the
// dashboard and prints its output.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wneessen/cyberdash/internal/client"
	"github.com/wneessen/cyberdash/internal/config"
	"github.com/wneessen/cyberdash/internal/http"
	"github.com/wneessen/cyberdash/internal/kvstore"
	"github.com/wneessen/cyberdash/internal/location"
	"github.com/wneessen/cyberdash/internal/logger"
	"github.com/wneessen/cyberdash/internal/poller"
	"github.com/wneessen/cyberdash/internal/population"
	"github.com/wneessen/cyberdash/internal/presenter"
	"github.com/wneessen/cyberdash/internal/proxy"
	"github.com/wneessen/cyberdash/internal/settings"
	"github.com/wneessen/cyberdash/internal/vartype"
)

const (
	subscriptionBuffer = 16
	shutdownTimeout    = time.Second * 5
)

// widget is the category independent control surface of a poller.
type widget interface {
	Category() string
	Start(ctx context.Context, interval time.Duration)
	Stop()
	Refresh(ctx context.Context) bool
}

type Dashboard struct {
	config    *config.Config
	logger    *logger.Logger
	client    *client.Client
	settings  *settings.Store
	location  *location.Store
	locator   *location.Locator
	estimator *population.Estimator
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	sigSource signalSource

	outputLock sync.Mutex
	output     io.Writer

	estimatorJob gocron.Job

	indoor   *poller.Poller[client.Indoor]
	outdoor  *poller.Poller[client.Outdoor]
	currency *poller.Poller[client.Rates]
	crypto   *poller.Poller[client.Crypto]
	services *poller.Poller[[]proxy.ServiceStatus]
	country  *poller.Poller[proxy.CountryResponse]
	widgets  map[settings.Category]widget
}

// New creates a dashboard session. The settings and the location are persisted in kv.
func New(conf *config.Config, log *logger.Logger, kv kvstore.Store) (*Dashboard, error) {
	if kv == nil {
		return nil, errors.New("key/value store is required")
	}
	apiClient, err := client.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy client: %w", err)
	}
	pres, err := presenter.New(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	dash := &Dashboard{
		config:    conf,
		logger:    log,
		client:    apiClient,
		settings:  settings.New(kv, log),
		location:  location.NewStore(kv, log),
		locator:   location.NewLocator(http.New(log), log),
		estimator: population.NewEstimator(),
		presenter: pres,
		scheduler: scheduler,
		sigSource: stdLibSignalSource{},
		output:    os.Stdout,
	}
	dash.createPollers()
	return dash, nil
}

// Settings returns the settings store of the session.
func (d *Dashboard) Settings() *settings.Store {
	return d.settings
}

// Location returns the location store of the session.
func (d *Dashboard) Location() *location.Store {
	return d.location
}

func (d *Dashboard) createPollers() {
	timeout := d.config.Dashboard.FetchTimeout
	d.indoor = poller.New(string(settings.Indoor), d.client.Indoor,
		poller.WithTimeout[client.Indoor](timeout), poller.WithLogger[client.Indoor](d.logger))
	d.outdoor = poller.New(string(settings.Outdoor), d.fetchOutdoor,
		poller.WithTimeout[client.Outdoor](timeout), poller.WithLogger[client.Outdoor](d.logger))
	d.currency = poller.New(string(settings.Currency), d.client.Currency,
		poller.WithTimeout[client.Rates](timeout), poller.WithLogger[client.Rates](d.logger))
	d.crypto = poller.New(string(settings.Crypto), d.fetchCrypto,
		poller.WithTimeout[client.Crypto](timeout), poller.WithLogger[client.Crypto](d.logger))
	d.services = poller.New(string(settings.Services), d.client.Services,
		poller.WithTimeout[[]proxy.ServiceStatus](timeout), poller.WithLogger[[]proxy.ServiceStatus](d.logger))
	d.country = poller.New(string(settings.Country), d.fetchCountry,
		poller.WithTimeout[proxy.CountryResponse](timeout), poller.WithLogger[proxy.CountryResponse](d.logger),
		poller.WithOnSuccess(d.anchorPopulation))

	d.widgets = map[settings.Category]widget{
		settings.Indoor:   d.indoor,
		settings.Outdoor:  d.outdoor,
		settings.Currency: d.currency,
		settings.Crypto:   d.crypto,
		settings.Services: d.services,
		settings.Country:  d.country,
	}
}

func (d *Dashboard) fetchOutdoor(ctx context.Context) (client.Outdoor, error) {
	loc := d.location.Get()
	return d.client.Outdoor(ctx, loc.Lat, loc.Lon)
}

func (d *Dashboard) fetchCrypto(ctx context.Context) (client.Crypto, error) {
	return d.client.Crypto(ctx, d.location.Get().CurrencyCode)
}

func (d *Dashboard) fetchCountry(ctx context.Context) (proxy.CountryResponse, error) {
	return d.client.Country(ctx, d.location.Get().CountryCode)
}

// anchorPopulation re-anchors the estimator to a fresh world population measurement and
// recomputes the displayed value right away.
func (d *Dashboard) anchorPopulation(country proxy.CountryResponse, at time.Time) {
	d.estimator.Anchor(country.WorldPopulation, at)
	if d.estimatorJob == nil {
		return
	}
	// called with the country poller locked
	go func() {
		if err := d.estimatorJob.RunNow(); err != nil {
			d.logger.Warn("failed to run estimator job", logger.Err(err))
		}
	}()
}

// Run starts the session and blocks until ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	settingsSub, settingsUnsub := d.settings.Subscribe(subscriptionBuffer)
	defer settingsUnsub()
	locationSub, locationUnsub := d.location.Subscribe(subscriptionBuffer)
	defer locationUnsub()

	d.location.Load()
	d.settings.Load()
	if !d.config.Dashboard.DisableGeoIP {
		go d.resolveLocation(ctx)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-d.settings.Ready():
	}

	if err := d.createScheduledJobs(ctx); err != nil {
		return err
	}
	d.scheduler.Start()

	stopMetrics := d.serveMetrics()
	defer stopMetrics()

	for _, category := range settings.Categories {
		d.startWidget(ctx, category)
	}
	defer d.stopWidgets()

	sigChan := make(chan os.Signal, 1)
	d.sigSource.Notify(sigChan, syscall.SIGUSR1, syscall.SIGHUP)
	defer d.sigSource.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return d.scheduler.Shutdown()
		case change, ok := <-settingsSub:
			if !ok {
				settingsSub = nil
				continue
			}
			d.logger.Debug("refresh interval changed", slog.String("category", string(change.Category)),
				slog.Int("interval", change.Interval))
			d.startWidget(ctx, change.Category)
		case loc, ok := <-locationSub:
			if !ok {
				locationSub = nil
				continue
			}
			d.logger.Debug("location changed", slog.String("name", loc.Name))
			for _, category := range []settings.Category{settings.Outdoor, settings.Country, settings.Crypto} {
				d.startWidget(ctx, category)
			}
		case sig := <-sigChan:
			d.handleSignal(ctx, sig)
		}
	}
}

func (d *Dashboard) resolveLocation(ctx context.Context) {
	changed, err := d.locator.Resolve(ctx, d.location)
	if err != nil {
		d.logger.Warn("failed to resolve location", logger.Err(err))
		return
	}
	if changed {
		d.logger.Info("location resolved", slog.String("name", d.location.Get().Name))
	}
}

// startWidget (re)starts the poller of category with its current interval.
func (d *Dashboard) startWidget(ctx context.Context, category settings.Category) {
	w, ok := d.widgets[category]
	if !ok {
		return
	}
	w.Start(ctx, time.Duration(d.settings.Interval(category))*time.Second)
}

func (d *Dashboard) stopWidgets() {
	for _, w := range d.widgets {
		w.Stop()
	}
}

// refreshManual fetches every widget whose automatic refresh is disabled.
func (d *Dashboard) refreshManual(ctx context.Context) {
	var wg sync.WaitGroup
	for _, category := range settings.Categories {
		if d.settings.Interval(category) != 0 {
			continue
		}
		w := d.widgets[category]
		wg.Go(func() {
			if !w.Refresh(ctx) {
				d.logger.Debug("refresh skipped, fetch in flight", slog.String("category", w.Category()))
			}
		})
	}
	wg.Wait()
	d.printOutput(ctx)
}

func (d *Dashboard) createScheduledJobs(ctx context.Context) error {
	job, err := d.createScheduledJob(ctx, d.config.Dashboard.EstimatorTick, d.tickEstimator, "estimator_tick_job")
	if err != nil {
		return err
	}
	d.estimatorJob = job
	_, err = d.createScheduledJob(ctx, d.config.Dashboard.Output, d.printOutput, "dashboard_output_job")
	return err
}

func (d *Dashboard) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) (gocron.Job, error) {
	job, err := d.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return job, nil
}

func (d *Dashboard) tickEstimator(context.Context) {
	d.estimator.Tick(time.Now())
}

// snapshot collects the current state of every widget.
func (d *Dashboard) snapshot() presenter.Snapshot {
	snap := presenter.Snapshot{
		Now:      time.Now(),
		Location: d.location.Get(),
		Indoor:   d.indoor.State(),
		Outdoor:  d.outdoor.State(),
		Currency: d.currency.State(),
		Crypto:   d.crypto.State(),
		Services: d.services.State(),
		Country:  d.country.State(),
	}
	if counters, ok := d.estimator.Displayed(); ok {
		snap.Population = vartype.NewVariable(counters)
	}
	return snap
}

// printOutput renders the current state and writes it as one JSON line.
func (d *Dashboard) printOutput(context.Context) {
	output, err := d.presenter.Render(d.snapshot())
	if err != nil {
		d.logger.Error("failed to render dashboard output", logger.Err(err))
		return
	}

	d.outputLock.Lock()
	defer d.outputLock.Unlock()
	if err = json.NewEncoder(d.output).Encode(output); err != nil {
		d.logger.Error("failed to encode dashboard output", logger.Err(err))
	}
}

// serveMetrics exposes the poller metrics if a metrics listen address is configured. The
// returned function shuts the server down.
func (d *Dashboard) serveMetrics() func() {
	if d.config.Dashboard.MetricsListen == "" {
		return func() {}
	}
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	server := &stdhttp.Server{
		Addr:              d.config.Dashboard.MetricsListen,
		Handler:           router,
		ReadHeaderTimeout: shutdownTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			d.logger.Error("metrics server failed", logger.Err(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			d.logger.Warn("failed to shut down metrics server", logger.Err(err))
		}
	}
}
