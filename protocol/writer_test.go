package protocol_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/strata/protocol"
)

var _ = Describe("Writer", func() {
	Describe("WriteCommand", func() {
		It("terminates the command with a newline", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteCommand(w, "PING")).To(Succeed())
			Expect(w.String()).To(Equal("PING\n"))
		})
	})

	Describe("WriteResponse", func() {
		It("round trips through ReadResponse", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteResponse(w, true, []byte("PONG.\n"))).To(Succeed())

			resp, err := protocol.ReadResponse(w)
			Expect(err).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Text()).To(Equal("PONG.\n"))
		})

		It("writes the status byte first", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteResponse(w, false, []byte("nope"))).To(Succeed())
			Expect(w.Bytes()[0]).To(Equal(byte(0x0)))
		})

		It("writes the body length big endian after the status byte", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteResponse(w, true, []byte("OK"))).To(Succeed())
			Expect(w.Bytes()[1:protocol.HeaderSize]).To(Equal([]byte{0, 0, 0, 0, 0, 0, 0, 2}))
		})
	})

	Describe("Command formatting", func() {
		tick := protocol.Update{
			Timestamp: 1505177459658,
			Seq:       139010,
			IsTrade:   true,
			IsBid:     false,
			Price:     0.0703629,
			Size:      7.65064249,
		}

		It("formats ADD with six comma-separated fields and a trailing semicolon", func() {
			Expect(protocol.FormatAdd(tick)).To(
				Equal("ADD 1505177459.658, 139010, t, f, 0.0703629, 7.65064249;"))
		})

		It("formats the ADD ... INTO variant", func() {
			Expect(protocol.FormatAddInto("btc_usd", tick)).To(
				Equal("ADD 1505177459.658, 139010, t, f, 0.0703629, 7.65064249;   INTO btc_usd"))
		})

		It("keeps the data line parseable after the server's INTO split", func() {
			command := protocol.FormatAddInto("btc_usd", tick)

			// The server slices the data line as command[3:index-2] and
			// the store name as everything after ` INTO `
			index := strings.Index(command, " INTO ")
			Expect(index).To(BeNumerically(">", 0))

			line := command[3 : index-2]
			Expect(line).To(HaveSuffix(";"))

			parsed, err := protocol.ParseLine(line)
			Expect(err).To(Succeed())
			Expect(parsed).To(Equal(tick))

			Expect(command[index+6:]).To(Equal("btc_usd"))
		})

		It("formats GET with a count", func() {
			Expect(protocol.FormatGet(5)).To(Equal("GET 5 AS JSON"))
		})

		It("formats CREATE and USE", func() {
			Expect(protocol.FormatCreate("btc_usd")).To(Equal("CREATE btc_usd"))
			Expect(protocol.FormatUse("btc_usd")).To(Equal("USE btc_usd"))
		})
	})
})
