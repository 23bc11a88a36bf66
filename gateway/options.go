package gateway

import (
	"go.uber.org/zap"

	"github.com/luma/strata/client"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on. Port 0 picks a free port; see HTTP.Addr.
	Port int

	// Debug leaves gin in debug mode and enables verbose request logs
	Debug bool

	// Client is the strata connection every request is bridged onto.
	// The wire protocol allows one request in flight per connection,
	// so concurrent HTTP requests contend for it and may see 503s.
	Client *client.Conn

	Log *zap.Logger
}
