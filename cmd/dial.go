package cmd

import (
	"context"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/luma/strata/client"
	"github.com/luma/strata/internal/env"
)

const defaultRequestTimeout = 10 * time.Second

// dial resolves the server address from flags and the environment and
// opens a connection to it. The loaded config is returned so commands
// that need more than the server address don't have to load it again.
func dial(ctx context.Context) (*client.Conn, *zap.Logger, *env.Config, error) {
	log, err := env.MakeLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	conf, err := env.LoadConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	// Flags beat the environment
	serverHost := conf.Host
	if host != "" {
		serverHost = host
	}

	serverPort := conf.Port
	if port != 0 {
		serverPort = port
	}

	conn := client.New(log.Named("client"), client.WithTimeout(defaultRequestTimeout))

	addr := net.JoinHostPort(serverHost, strconv.Itoa(serverPort))
	if err := conn.Connect(ctx, addr); err != nil {
		return nil, nil, nil, err
	}

	return conn, log, conf, nil
}
