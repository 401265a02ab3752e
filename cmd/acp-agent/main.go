// Command acp-agent is a reference ACP agent: it speaks the protocol over
// stdio and answers prompts by echoing them back, logging every turn to a
// local SQLite transcript. Run it as the subprocess half of an ACP client
// such as cmd/acp-client.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentclientprotocol/acp-go/acp"
	"github.com/agentclientprotocol/acp-go/internal/otelobs"
	"github.com/agentclientprotocol/acp-go/internal/transcript"
	"github.com/agentclientprotocol/acp-go/internal/wsduplex"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		healthAddr string
		dbPath     string
		debug      bool
		otelTrace  bool
		wsAddr     string
	)

	cmd := &cobra.Command{
		Use:   "acp-agent",
		Short: "Reference Agent Client Protocol agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(healthAddr, dbPath, wsAddr, debug, otelTrace)
		},
	}

	cmd.Flags().StringVar(&healthAddr, "health-addr", "127.0.0.1:8732", "address to serve /healthz on")
	cmd.Flags().StringVar(&dbPath, "transcript-db", "", "path to a SQLite transcript database (default: in-memory)")
	cmd.Flags().StringVar(&wsAddr, "ws-addr", "", "serve the connection over a WebSocket at this address instead of stdio")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&otelTrace, "otel", false, "trace every request/response/notification crossing the connection")

	viper.SetEnvPrefix("ACP_AGENT")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("health-addr", cmd.Flags().Lookup("health-addr"))
	_ = viper.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	return cmd
}

func run(healthAddr, dbPath, wsAddr string, debug, traceEnabled bool) error {
	log, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("acp-agent: logger: %w", err)
	}
	defer log.Sync()

	if dbPath == "" {
		dbPath = ":memory:"
	}
	store, err := transcript.Open(dbPath)
	if err != nil {
		return fmt.Errorf("acp-agent: transcript store: %w", err)
	}
	defer store.Close()

	duplex, stopDuplex, err := dialDuplex(wsAddr, log)
	if err != nil {
		return err
	}
	defer stopDuplex()

	handler := newEchoAgent(log, store)
	conn := acp.NewAgentSideConnection(duplex, handler, log)
	handler.bind(conn)

	if traceEnabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
		defer tp.Shutdown(context.Background())
		otel.SetTracerProvider(tp)
		conn.Subscribe(otelobs.New(tp.Tracer("acp-agent")))
	}

	stopHealth := serveHealthz(healthAddr, log)
	defer stopHealth()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-conn.Done():
		return conn.Err()
	case <-ctx.Done():
		return conn.Close()
	}
}

// stdioDuplex adapts the process's own stdin/stdout into the io.ReadWriter
// a Connection expects.
type stdioDuplex struct{}

func (stdioDuplex) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioDuplex) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// dialDuplex returns the byte stream the Connection should speak over:
// stdio by default, or the first WebSocket connection accepted at wsAddr
// when set, so the same agent binary can serve an editor that only
// speaks ws:// rather than spawning a subprocess.
func dialDuplex(wsAddr string, log *zap.Logger) (io.ReadWriter, func(), error) {
	if wsAddr == "" {
		return stdioDuplex{}, func() {}, nil
	}

	conns := make(chan *wsduplex.Duplex, 1)
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		d, err := wsduplex.Upgrade(w, req)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		conns <- d
	})
	srv := &http.Server{Addr: wsAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ws listener stopped", zap.Error(err))
		}
	}()

	log.Info("waiting for a WebSocket client", zap.String("addr", wsAddr))
	d := <-conns
	return d, func() { _ = d.Close(); _ = srv.Close() }, nil
}

func serveHealthz(addr string, log *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("healthz server stopped", zap.Error(err))
		}
	}()
	return func() { _ = srv.Close() }
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// stdout is the JSON-RPC channel; logs must never share it.
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
