package cmd

import (
	"context"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ver "github.com/evername/w3dns"
	"github.com/evername/w3dns/core/api"
	"github.com/evername/w3dns/core/logging"
	"github.com/evername/w3dns/core/resolver/client/evername"
	"github.com/evername/w3dns/core/resolver/client/unstoppable"
	"github.com/evername/w3dns/core/resolver/multiresolver"
)

func (c *command) initStartCmd() (err error) {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the resolver API server",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(args) > 0 {
				return cmd.Help()
			}

			v := strings.ToLower(c.config.GetString(optionNameVerbosity))
			logger, err := newLogger(cmd, v)
			if err != nil {
				return fmt.Errorf("new logger: %w", err)
			}

			logger.Infof("version: %v", ver.Version)

			mr, err := multiresolver.New(c.resolverOptions(logger)...)
			if err != nil {
				return fmt.Errorf("new resolver: %w", err)
			}
			defer mr.Close()

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				prometheus.NewGoCollector(),
				prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			)
			registry.MustRegister(mr.Metrics()...)

			apiService := api.New(api.Options{
				Resolver:           mr,
				CORSAllowedOrigins: c.config.GetStringSlice(optionNameCORSAllowedOrigins),
				Logger:             logger,
				MetricsRegistry:    registry,
			})
			registry.MustRegister(apiService.Metrics()...)

			addr := c.config.GetString(optionNameAPIAddr)
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("api listener: %w", err)
			}

			srv := &http.Server{
				Handler:           apiService,
				IdleTimeout:       30 * time.Second,
				ReadHeaderTimeout: 3 * time.Second,
				ErrorLog:          stdlog.New(logger.WriterLevel(logrus.ErrorLevel), "", 0),
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Infof("api address: %s", listener.Addr())
				if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			interruptChannel := make(chan os.Signal, 1)
			signal.Notify(interruptChannel, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-interruptChannel:
				logger.Debugf("received signal: %v", sig)
				logger.Info("shutting down")
			case err := <-serverErr:
				return fmt.Errorf("api server: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.config.BindPFlags(cmd.Flags())
		},
	}

	c.setResolverFlags(cmd)
	cmd.Flags().String(optionNameAPIAddr, ":1633", "HTTP API listen address")
	cmd.Flags().StringSlice(optionNameCORSAllowedOrigins, nil, "origins with CORS headers enabled")

	c.root.AddCommand(cmd)
	return nil
}

// setResolverFlags registers the flags shared by the commands that build a
// resolver.
func (c *command) setResolverFlags(cmd *cobra.Command) {
	cmd.Flags().String(optionNameRPCEndpoint, evername.DefaultEndpoint, "naming system JSON-RPC gateway endpoint")
	cmd.Flags().String(optionNameRootAddress, evername.DefaultRootAddress, "naming system root resolver contract address")
	cmd.Flags().String(optionNameRegistrarEndpoint, unstoppable.DefaultEndpoint, "registrar API base URL")
	cmd.Flags().String(optionNameGatewayHost, "", "IPFS gateway host for ipfs records")
	cmd.Flags().Duration(optionNameCacheTTL, multiresolver.DefaultCacheTTL, "resolution cache time to live")
	cmd.Flags().Bool(optionNameNoCache, false, "disable the resolution cache")
	cmd.Flags().String(optionNameVerbosity, "info", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")
}

func (c *command) resolverOptions(logger logging.Logger) []multiresolver.Option {
	opts := []multiresolver.Option{
		multiresolver.WithEverEndpoint(c.config.GetString(optionNameRPCEndpoint)),
		multiresolver.WithRootAddress(c.config.GetString(optionNameRootAddress)),
		multiresolver.WithRegistrarEndpoint(c.config.GetString(optionNameRegistrarEndpoint)),
		multiresolver.WithLogger(logger),
	}
	if host := c.config.GetString(optionNameGatewayHost); host != "" {
		opts = append(opts, multiresolver.WithGatewayHost(host))
	}
	if c.config.GetBool(optionNameNoCache) {
		opts = append(opts, multiresolver.WithNoCache())
	} else {
		opts = append(opts, multiresolver.WithCacheTTL(c.config.GetDuration(optionNameCacheTTL)))
	}
	return opts
}
