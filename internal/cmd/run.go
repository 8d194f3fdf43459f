package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshdurbin/fitness-wrapped/internal/config"
	"github.com/joshdurbin/fitness-wrapped/internal/ingest"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/observability"
	"github.com/joshdurbin/fitness-wrapped/internal/publish"
	"github.com/joshdurbin/fitness-wrapped/internal/server"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
	"github.com/joshdurbin/fitness-wrapped/internal/store"
	"github.com/joshdurbin/fitness-wrapped/internal/summary"
	"github.com/joshdurbin/fitness-wrapped/internal/workers"
)

var (
	servePort           int
	serveInbox          string
	serveImportInterval time.Duration
	serveMetrics        bool
	serveBrokers        []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve year summaries over MCP and watch the import inbox",
	Long: `Serve starts the MCP server (SSE on --port, stdio with --port 0).

When an inbox directory is configured, files dropped into it are imported
every --import-interval, moved to processed/ (or failed/), and the years they
touch are recomputed and published to Kafka when brokers are configured.
Prometheus metrics are served on /metrics beside the SSE endpoint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Serve.Port = servePort
		}
		if flags.Changed("inbox") {
			cfg.Import.Inbox = serveInbox
		}
		if flags.Changed("import-interval") {
			cfg.Import.Interval = serveImportInterval
		}
		if flags.Changed("metrics") {
			cfg.Serve.Metrics = serveMetrics
		}
		if flags.Changed("brokers") {
			cfg.Publish.Brokers = serveBrokers
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return Run(cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultServePort, "MCP server port (0 for stdio mode)")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "directory watched for new export files (empty disables the watcher)")
	serveCmd.Flags().DurationVar(&serveImportInterval, "import-interval", config.DefaultImportInterval, "interval between inbox scans")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", config.DefaultServeMetrics, "serve Prometheus metrics on /metrics")
	serveCmd.Flags().StringSliceVar(&serveBrokers, "brokers", nil, "Kafka brokers for summary events (empty disables publishing)")
}

// app bundles the components every subcommand works with
type app struct {
	store     *store.Store
	service   *service.Service
	publisher publish.Publisher
}

// openApp opens the store and builds the summary service. Kafka publishing
// is only wired when withPublisher is set and brokers are configured.
func openApp(ctx context.Context, c *config.Config, withPublisher bool) (*app, error) {
	engineCfg, err := config.LoadEngineConfig(c.Engine.File)
	if err != nil {
		return nil, err
	}
	engine, err := summary.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("creating summary engine: %w", err)
	}

	logging.Logger.Debug().Str("path", c.DB.Path).Msg("opening database")
	st, err := store.Open(ctx, c.DB.Path)
	if err != nil {
		return nil, err
	}

	var pub publish.Publisher = publish.Nop{}
	if withPublisher && len(c.Publish.Brokers) > 0 {
		logging.Logger.Info().
			Strs("brokers", c.Publish.Brokers).
			Str("topic", c.Publish.Topic).
			Msg("publishing year summaries to Kafka")
		pub = publish.NewKafkaPublisher(c.Publish.Brokers, c.Publish.Topic)
	}

	svc, err := service.New(st, engine, pub)
	if err != nil {
		_ = pub.Close()
		_ = st.Close()
		return nil, err
	}
	return &app{store: st, service: svc, publisher: pub}, nil
}

func (a *app) Close() error {
	return errors.Join(a.publisher.Close(), a.store.Close())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	log := logging.Logger

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// Run is the main entry point for serve mode
func Run(c *config.Config) error {
	log := logging.Logger

	log.Info().
		Str("db_path", c.DB.Path).
		Int("mcp_port", c.Serve.Port).
		Str("inbox", c.Import.Inbox).
		Dur("import_interval", c.Import.Interval).
		Bool("metrics", c.Serve.Metrics).
		Msg("starting fitness-wrapped")

	ctx, cancel := signalContext()
	defer cancel()

	a, err := openApp(ctx, c, true)
	if err != nil {
		return err
	}
	defer a.Close()

	workers.LogDatabaseStats(ctx, a.store)

	// Background workers with errgroup for graceful shutdown
	g, gCtx := errgroup.WithContext(ctx)

	if c.Import.Inbox != "" {
		if err := os.MkdirAll(c.Import.Inbox, 0o755); err != nil {
			return fmt.Errorf("creating inbox: %w", err)
		}
		watcher := workers.NewInboxWatcher(ingest.NewImporter(a.store), a.service, c.Import.Inbox, c.Import.Interval)
		g.Go(func() error {
			watcher.Run(gCtx)
			return nil
		})
	} else {
		log.Info().Msg("no inbox configured, skipping import watcher")
	}

	srv := server.New(a.service, version)

	var serverErr error
	if c.Serve.Port > 0 {
		serverErr = runHTTPServer(ctx, srv.MCPServer(), c.Serve.Port, c.Serve.Metrics)
	} else {
		log.Info().Msg("MCP server running via stdio")
		serverErr = srv.Run(ctx)
	}

	// stdio returns when the client disconnects; stop the workers too
	cancel()
	log.Info().Msg("waiting for workers to shut down")
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("worker error during shutdown")
	} else {
		log.Info().Msg("all workers shut down gracefully")
	}

	return serverErr
}

// runHTTPServer runs the MCP server over HTTP/SSE, with Prometheus metrics
// on /metrics when enabled
func runHTTPServer(ctx context.Context, mcpServer *mcp.Server, port int, metrics bool) error {
	log := logging.Logger

	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	if metrics {
		mux.Handle("/metrics", observability.Handler())
	}
	mux.Handle("/", handler)

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", addr).
			Str("endpoint", fmt.Sprintf("http://localhost%s", addr)).
			Bool("metrics", metrics).
			Msg("MCP server running via HTTP/SSE")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
