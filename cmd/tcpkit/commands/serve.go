package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcpkit/tcpkit/internal/logger"
	"github.com/tcpkit/tcpkit/pkg/config"
	"github.com/tcpkit/tcpkit/pkg/metrics"
	promMetrics "github.com/tcpkit/tcpkit/pkg/metrics/prometheus"
	"github.com/tcpkit/tcpkit/pkg/pipeline"
	"github.com/tcpkit/tcpkit/pkg/server"
)

var (
	servePort    int
	serveAddress string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a framed echo server",
	Long: `Run a framed echo server with the configured reactor groups and
transport backend. Every frame received is sent back unchanged.

Use --config to specify a configuration file, or override the endpoint
directly with --port and --address.

Examples:
  # Serve with defaults (port 3000)
  tcpkit serve

  # Serve on a specific endpoint
  tcpkit serve --address 127.0.0.1 --port 4000

  # Serve with a config file and environment overrides
  TCPKIT_LOGGING_LEVEL=DEBUG tcpkit serve --config /etc/tcpkit/config.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listening port (overrides config)")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Bind address (overrides config)")
}

// echoHandler sends every received frame back to its sender.
type echoHandler struct{}

func (echoHandler) OnOpen(c pipeline.Conn) {
	logger.Debug("session opened", logger.KeyConnID, c.ID(), logger.KeyRemoteAddr, c.RemoteAddr().String())
}

func (echoHandler) OnMessage(c pipeline.Conn, payload []byte) {
	out := make([]byte, len(payload))
	copy(out, payload)
	if err := c.Send(out); err != nil {
		logger.Warn("echo send failed", logger.KeyConnID, c.ID(), logger.KeyError, err.Error())
	}
}

func (echoHandler) OnClose(c pipeline.Conn, err error) {
	if err != nil {
		logger.Debug("session closed", logger.KeyConnID, c.ID(), logger.KeyError, err.Error())
		return
	}
	logger.Debug("session closed", logger.KeyConnID, c.ID())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveAddress != "" {
		cfg.Server.BindAddress = serveAddress
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	var opts []server.Option
	var metricsHTTP *metrics.HTTPServer
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		opts = append(opts, server.WithMetrics(promMetrics.NewServerMetrics()))

		metricsHTTP, err = metrics.NewHTTPServer(cfg.Metrics.Port)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		metricsHTTP.Start()
	} else {
		logger.Info("metrics collection disabled")
	}

	srv, err := server.New(cfg.ToServer(), func() (pipeline.Handler, error) {
		return echoHandler{}, nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Init(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	started := make(chan int, 1)
	failed := make(chan error, 1)
	handle := srv.StartBackground(server.Callbacks{
		Success: func(port int) { started <- port },
		Failure: func(err error) { failed <- err },
	})

	select {
	case port := <-started:
		logger.Info("echo server is running, press Ctrl+C to stop", logger.KeyPort, port)
	case err := <-failed:
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)

	logger.Info("shutdown signal received, stopping server")
	if err := srv.Stop(nil); err != nil {
		return err
	}
	if err := handle.Wait(); err != nil {
		return err
	}

	if metricsHTTP != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsHTTP.Stop(ctx); err != nil {
			logger.Warn("metrics server shutdown error", logger.KeyError, err.Error())
		}
	}

	logger.Info("server stopped gracefully")
	return nil
}
