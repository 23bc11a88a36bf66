package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/strata/protocol"
	"github.com/luma/strata/storage"
)

var (
	exportStore string
	exportCount int
)

var ExportCmd = &cobra.Command{
	Use:   "export <sqlite file>",
	Short: "Copy ticks from the server into a local SQLite file",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
		defer cancel()

		conn, log, _, err := dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		store := "default"
		if exportStore != "" {
			store = exportStore

			resp, err := conn.Use(ctx, exportStore)
			if err != nil {
				return err
			}
			if err := resp.ErrorOrNil(); err != nil {
				return err
			}
		}

		var updates []protocol.Update
		if exportCount > 0 {
			updates, err = conn.Get(ctx, exportCount)
		} else {
			updates, err = conn.GetAll(ctx)
		}
		if err != nil {
			return err
		}

		sink, err := storage.NewSQLiteSink(args[0], log.Named("sqlite"))
		if err != nil {
			return err
		}
		defer sink.Close()

		if err := sink.WriteUpdates(ctx, store, updates); err != nil {
			return err
		}

		log.Info("Exported ticks",
			zap.String("file", args[0]),
			zap.String("store", store),
			zap.Int("count", len(updates)))

		return nil
	},
}

func init() {
	flags := ExportCmd.Flags()

	flags.StringVar(&exportStore, "store", "", "USE this store before exporting (defaults to the server's default store)")
	flags.IntVar(&exportCount, "count", 0, "Only export the first count ticks")
}
