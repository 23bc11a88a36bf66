package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var PingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the strata server is responding",

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
		defer cancel()

		conn, _, _, err := dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		resp, err := conn.Ping(ctx)
		if err != nil {
			return err
		}

		fmt.Print(resp.Text())

		return resp.ErrorOrNil()
	},
}
