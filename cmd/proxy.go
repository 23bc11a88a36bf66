package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/strata/gateway"
)

var (
	// The host to serve HTTP requests on
	gatewayHost string

	// The port to serve HTTP requests on
	gatewayPort int
)

func init() {
	flags := ProxyCmd.Flags()

	flags.StringVar(&gatewayHost, "gateway-host", "0.0.0.0", "The host to serve the HTTP gateway on")
	flags.IntVar(&gatewayPort, "gateway-port", 9002, "The port to serve the HTTP gateway on")
}

var ProxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Serve an HTTP gateway in front of a strata server",
	Long: `Serve an HTTP gateway in front of a strata server

Usage
	strata proxy

The gateway holds one connection to the server. The wire protocol only
allows one request in flight on it, so concurrent HTTP requests that
lose the race are answered with 503.
`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
		defer signalStop()

		conn, log, conf, err := dial(ctx)
		if err != nil {
			return err
		}

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		h := gateway.New(gateway.Options{
			Host:   gatewayHost,
			Port:   gatewayPort,
			Debug:  conf.DebugHTTP,
			Client: conn,
			Log:    log.Named("gateway"),
		})

		if err := h.Start(ctx); err != nil {
			return err
		}

		log.Info("Listening",
			zap.Any("config", conf),
			zap.String("gatewayHost", gatewayHost),
			zap.Int("gatewayPort", gatewayPort))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			log.Error("Gateway forced to shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
