package storage_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/strata/protocol"
	"github.com/luma/strata/storage"
)

var _ = Describe("storage / SQLiteSink", func() {
	var (
		dir  string
		sink *storage.SQLiteSink
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "strata-sqlite")
		Expect(err).To(Succeed())

		sink, err = storage.NewSQLiteSink(filepath.Join(dir, "ticks.sqlite"), zap.NewNop())
		Expect(err).To(Succeed())
	})

	AfterEach(func() {
		Expect(sink.Close()).To(Succeed())
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("writes ticks tagged with their store", func() {
		err := sink.WriteUpdates(context.Background(), "btc_usd", []protocol.Update{
			{Timestamp: 1505177459658, Seq: 1, IsTrade: true, IsBid: false, Price: 0.07, Size: 7.65},
			{Timestamp: 1505177459659, Seq: 2, IsTrade: false, IsBid: true, Price: 0.08, Size: 1.5},
		})
		Expect(err).To(Succeed())

		count, err := sink.CountTicks(context.Background(), "btc_usd")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(int64(2)))

		count, err = sink.CountTicks(context.Background(), "eth_usd")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(int64(0)))
	})

	It("treats an empty batch as a no-op", func() {
		Expect(sink.WriteUpdates(context.Background(), "btc_usd", nil)).To(Succeed())

		count, err := sink.CountTicks(context.Background(), "btc_usd")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(int64(0)))
	})

	It("appends across separate batches", func() {
		for i := 0; i < 3; i++ {
			err := sink.WriteUpdates(context.Background(), "btc_usd", []protocol.Update{
				{Timestamp: uint64(1000 + i), Seq: uint32(i), Price: 1, Size: 1},
			})
			Expect(err).To(Succeed())
		}

		count, err := sink.CountTicks(context.Background(), "btc_usd")
		Expect(err).To(Succeed())
		Expect(count).To(Equal(int64(3)))
	})
})
