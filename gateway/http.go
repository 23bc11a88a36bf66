package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/strata/client"
	"github.com/luma/strata/protocol"
)

const requestTimeout = 3 * time.Second

// HTTP exposes a strata connection as a small REST surface, for
// environments where speaking the binary protocol directly is
// inconvenient.
type HTTP struct {
	addr   string
	client *client.Conn

	listener net.Listener
	srv      *http.Server

	log *zap.Logger
}

func New(options Options) *HTTP {
	return &HTTP{
		addr:   net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		client: options.Client,
		log:    options.Log,
		srv: &http.Server{
			Handler: setupRouter(options),
		},
	}
}

// Start binds the listener and begins serving. It does not block.
func (h *HTTP) Start(ctx context.Context) error {
	listener, err := reuseport.Listen("tcp", h.addr)
	if err != nil {
		return err
	}

	h.listener = listener
	h.log.Info("Gateway listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := h.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("Gateway server errored", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address. Only valid after Start.
func (h *HTTP) Addr() string {
	return h.listener.Addr().String()
}

// Shutdown drains in-flight requests and closes the listener and the
// underlying strata connection.
func (h *HTTP) Shutdown(ctx context.Context) error {
	h.srv.SetKeepAlivesEnabled(false)

	return multierr.Append(h.srv.Shutdown(ctx), h.client.Close())
}

func setupRouter(options Options) *gin.Engine {
	gin.DisableConsoleColor()
	if !options.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(ginzap.Ginzap(options.Log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(options.Log, true))

	g := &handlers{client: options.Client}

	r.GET("/ping", g.ping)
	r.GET("/info", g.info)
	r.GET("/ticks", g.getTicks)
	r.POST("/ticks", g.addTicks)
	r.DELETE("/ticks", g.clear)
	r.POST("/flush", g.flush)
	r.POST("/stores/:name", g.create)
	r.PUT("/stores/:name/use", g.use)

	return r
}

type handlers struct {
	client *client.Conn
}

func (g *handlers) ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := g.client.Ping(ctx)
	if abortOnError(c, err) {
		return
	}

	c.String(http.StatusOK, resp.Text())
}

func (g *handlers) info(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := g.client.Info(ctx)
	if abortOnError(c, err) {
		return
	}

	if err := resp.ErrorOrNil(); err != nil {
		abortOnError(c, err)
		return
	}

	// The INFO payload is already JSON; pass it through untouched.
	c.Data(http.StatusOK, "application/json", resp.Payload)
}

func (g *handlers) getTicks(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		updates []protocol.Update
		err     error
	)

	if countParam, ok := c.GetQuery("count"); ok {
		count, perr := strconv.Atoi(countParam)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be an integer"})
			return
		}

		updates, err = g.client.Get(ctx, count)
	} else {
		updates, err = g.client.GetAll(ctx)
	}

	if abortOnError(c, err) {
		return
	}

	c.JSON(http.StatusOK, updates)
}

func (g *handlers) addTicks(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates, err := protocol.DecodeUpdates(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Bulk adds pay one round trip per tick; scale the deadline with
	// the batch.
	ctx, cancel := context.WithTimeout(c.Request.Context(),
		requestTimeout+time.Duration(len(updates))*100*time.Millisecond)
	defer cancel()

	if abortOnError(c, g.client.BulkAdd(ctx, updates)) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": len(updates)})
}

func (g *handlers) clear(c *gin.Context) {
	g.simpleVerb(c, func(ctx context.Context) (*protocol.Response, error) {
		if c.Query("all") == "true" {
			return g.client.ClearAll(ctx)
		}
		return g.client.Clear(ctx)
	})
}

func (g *handlers) flush(c *gin.Context) {
	g.simpleVerb(c, func(ctx context.Context) (*protocol.Response, error) {
		if c.Query("all") == "true" {
			return g.client.FlushAll(ctx)
		}
		return g.client.Flush(ctx)
	})
}

func (g *handlers) create(c *gin.Context) {
	g.simpleVerb(c, func(ctx context.Context) (*protocol.Response, error) {
		return g.client.Create(ctx, c.Param("name"))
	})
}

func (g *handlers) use(c *gin.Context) {
	g.simpleVerb(c, func(ctx context.Context) (*protocol.Response, error) {
		return g.client.Use(ctx, c.Param("name"))
	})
}

func (g *handlers) simpleVerb(c *gin.Context, verb func(context.Context) (*protocol.Response, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := verb(ctx)
	if abortOnError(c, err) {
		return
	}

	if err := resp.ErrorOrNil(); err != nil {
		abortOnError(c, err)
		return
	}

	c.String(http.StatusOK, resp.Text())
}

// abortOnError maps client errors onto HTTP statuses. It returns true
// if the request was aborted.
func abortOnError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	serverErr := new(protocol.ServerError)

	status := http.StatusBadGateway
	switch {
	case errors.As(err, &serverErr):
		// The server handled the command and said no
		status = http.StatusUnprocessableEntity
	case errors.Is(err, client.ErrBusy):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	c.JSON(status, gin.H{"error": err.Error()})
	return true
}
