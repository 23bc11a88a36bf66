package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/strata/protocol"
)

var (
	importStore  string
	importCreate bool
	importFlush  bool
)

var ImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk add ticks from a file",
	Long: `Bulk add ticks from a file

The file holds one tick per line in the server's line format

	1505177459.658, 139010, t, t, 0.0703629, 7.65064249;

Blank lines and lines starting with # are skipped. The ticks are sent
as a single BULKADD batch, which costs one round trip per tick.
`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		var updates []protocol.Update

		scanner := bufio.NewScanner(file)
		lineNo := 0
		for scanner.Scan() {
			lineNo++

			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			u, err := protocol.ParseLine(line)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", args[0], lineNo, err)
			}

			updates = append(updates, u)
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		// One round trip per tick, so the deadline scales with the file
		ctx, cancel := context.WithTimeout(cmd.Context(),
			defaultRequestTimeout+time.Duration(len(updates))*100*time.Millisecond)
		defer cancel()

		conn, log, _, err := dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if importCreate && importStore != "" {
			if _, err := conn.Create(ctx, importStore); err != nil {
				return err
			}
		}

		if importStore != "" {
			resp, err := conn.Use(ctx, importStore)
			if err != nil {
				return err
			}
			if err := resp.ErrorOrNil(); err != nil {
				return err
			}
		}

		if err := conn.BulkAdd(ctx, updates); err != nil {
			return err
		}

		if importFlush {
			resp, err := conn.Flush(ctx)
			if err != nil {
				return err
			}
			if err := resp.ErrorOrNil(); err != nil {
				return err
			}
		}

		log.Info("Imported ticks",
			zap.String("file", args[0]),
			zap.String("store", importStore),
			zap.Int("count", len(updates)))

		return nil
	},
}

func init() {
	flags := ImportCmd.Flags()

	flags.StringVar(&importStore, "store", "", "USE this store before importing")
	flags.BoolVar(&importCreate, "create", false, "CREATE the store first")
	flags.BoolVar(&importFlush, "flush", false, "FLUSH the store to disk after importing")
}
