package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luma/strata/protocol"
)

var getStore string

var GetCmd = &cobra.Command{
	Use:   "get [count]",
	Short: "Read ticks back from the server as JSON",
	Long: `Read ticks back from the server as JSON

Without arguments it fetches every tick in the store; with a count it
fetches the first count ticks.
`,
	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
		defer cancel()

		conn, _, _, err := dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if getStore != "" {
			if _, err := conn.Use(ctx, getStore); err != nil {
				return err
			}
		}

		var updates []protocol.Update

		if len(args) == 1 {
			count, perr := strconv.Atoi(args[0])
			if perr != nil {
				return fmt.Errorf("count must be an integer, got %q", args[0])
			}

			updates, err = conn.Get(ctx, count)
		} else {
			updates, err = conn.GetAll(ctx)
		}

		if err != nil {
			return err
		}

		out, err := protocol.EncodeUpdates(updates)
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	},
}

func init() {
	GetCmd.Flags().StringVar(&getStore, "store", "", "USE this store before reading")
}
