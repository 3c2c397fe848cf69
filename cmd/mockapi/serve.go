package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	simulationsapi "mockapi/internal/adapters/simulations"
	studentsapi "mockapi/internal/adapters/students"
	"mockapi/internal/core"
	"mockapi/internal/httpserver"
	"mockapi/internal/logging"
)

// routesBuilder returns a service's routes and a closer for its resources.
type routesBuilder func(ctx context.Context, a *app, opts []core.ServiceOption) (http.Handler, io.Closer, error)

func newServeCmd(a *app) *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run one of the HTTP services",
	}
	serve.AddCommand(
		newServiceCmd(a, "simulations", "Run the Houdini VFX simulation API", buildSimulations,
			func() string { return a.cfg.Server.SimulationsAddr }),
		newServiceCmd(a, "students", "Run the student records API", buildStudents,
			func() string { return a.cfg.Server.StudentsAddr }),
	)
	return serve
}

func newServiceCmd(a *app, name, short string, build routesBuilder, defaultAddr func() string) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := listen
			if addr == "" {
				addr = defaultAddr()
			}
			return a.serve(cmd.Context(), name, addr, build)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "HTTP listen address (overrides config)")
	return cmd
}

func buildSimulations(ctx context.Context, a *app, opts []core.ServiceOption) (http.Handler, io.Closer, error) {
	archive, err := core.OpenArchive(ctx, a.cfg.Blob)
	if err != nil {
		return nil, nil, err
	}
	if archive != nil {
		a.logger.Info().Str("driver", string(archive.Driver())).Msg("simulation archive enabled")
	}
	svc := core.NewSimulationService(archive, opts...)
	return simulationsapi.NewHandler(svc, logging.WithComponent(a.logger, "simulations")), nopCloser{}, nil
}

func buildStudents(ctx context.Context, a *app, opts []core.ServiceOption) (http.Handler, io.Closer, error) {
	store, closer, err := core.OpenStudentStore(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts,
		core.WithLookupMode(core.LookupMode(strings.ToLower(a.cfg.Students.LookupMode))),
		core.WithUpdateMode(core.UpdateMode(strings.ToLower(a.cfg.Students.UpdateMode))),
	)
	svc := core.NewStudentService(store, opts...)
	return studentsapi.NewHandler(svc, logging.WithComponent(a.logger, "students")), closer, nil
}

func (a *app) serve(parent context.Context, name, addr string, build routesBuilder) (err error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := a.notify(parent)
	defer stop()

	logger := logging.WithComponent(a.logger, name)
	tp, shutdownTracing := core.NewTracerProvider(a.cfg.Tracing, logger)
	defer func() {
		if serr := shutdownTracing(context.Background()); serr != nil {
			logger.Warn().Err(serr).Msg("tracer shutdown")
		}
	}()

	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithTracer(tp.Tracer("mockapi/" + name)),
	}
	var registry *prometheus.Registry
	if a.cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(registry, a.cfg.Metrics.Namespace)))
	}

	routes, closer, err := build(ctx, a, opts)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	srv := httpserver.New(routes, httpserver.Options{
		Name:            name,
		Addr:            addr,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		IdleTimeout:     a.cfg.Server.IdleTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		Logger:          a.logger,
		Registry:        registry,
		MetricsPath:     a.cfg.Metrics.Path,
		Namespace:       a.cfg.Metrics.Namespace,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	fmt.Fprintf(a.stderr, "%s listening on %s\n", color.GreenString("mockapi "+name), color.CyanString("http://"+srv.Addr()))
	if a.ready != nil {
		a.ready(srv.Addr())
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-srv.Done():
		return err
	}
	return srv.Stop(context.Background())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
