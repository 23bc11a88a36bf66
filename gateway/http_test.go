package gateway_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/strata/client"
	"github.com/luma/strata/gateway"
	"github.com/luma/strata/protocol"
)

// startTickServer stands in for a strata server: it answers PING and
// GET ... AS JSON and fails everything else.
func startTickServer() net.Listener {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).To(Succeed())

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for {
			raw, err := r.ReadString('\n')
			if err != nil {
				return
			}

			var werr error
			switch line := strings.TrimSuffix(raw, "\n"); {
			case line == "PING":
				werr = protocol.WriteResponse(conn, true, []byte("PONG.\n"))
			case strings.HasPrefix(line, "GET "):
				werr = protocol.WriteResponse(conn, true,
					[]byte(`[{"ts":1505177459.658,"seq":1,"is_trade":true,"is_bid":false,"price":0.07,"size":7.65}]`))
			default:
				werr = protocol.WriteResponse(conn, false, []byte("ERR: Unsupported command.\n"))
			}
			if werr != nil {
				return
			}
		}
	}()

	return listener
}

var _ = Describe("gateway", func() {
	var (
		tickServer net.Listener
		h          *gateway.HTTP
		baseURL    string
	)

	BeforeEach(func() {
		tickServer = startTickServer()

		conn := client.New(zap.NewNop(), client.WithTimeout(time.Second))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(conn.Connect(ctx, tickServer.Addr().String())).To(Succeed())

		h = gateway.New(gateway.Options{
			Host:   "127.0.0.1",
			Port:   0,
			Client: conn,
			Log:    zap.NewNop(),
		})
		Expect(h.Start(context.Background())).To(Succeed())

		baseURL = fmt.Sprintf("http://%s", h.Addr())
	})

	AfterEach(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Expect(h.Shutdown(ctx)).To(Succeed())
		tickServer.Close()
	})

	It("bridges /ping onto the tick server", func() {
		resp, err := http.Get(baseURL + "/ping")
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(Succeed())
		Expect(string(body)).To(Equal("PONG.\n"))
	})

	It("returns ticks as JSON from /ticks", func() {
		resp, err := http.Get(baseURL + "/ticks?count=5")
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(Succeed())

		updates, err := protocol.DecodeUpdates(body)
		Expect(err).To(Succeed())
		Expect(updates).To(HaveLen(1))
		Expect(updates[0].Timestamp).To(Equal(uint64(1505177459658)))
	})

	It("rejects a non-numeric count", func() {
		resp, err := http.Get(baseURL + "/ticks?count=banana")
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("maps a server-side failure onto 422", func() {
		req, err := http.NewRequest(http.MethodPost, baseURL+"/flush", nil)
		Expect(err).To(Succeed())

		resp, err := http.DefaultClient.Do(req)
		Expect(err).To(Succeed())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
	})
})
