package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe every store the strata server has loaded",

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
		defer cancel()

		conn, _, _, err := dial(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		resp, err := conn.Info(ctx)
		if err != nil {
			return err
		}

		if err := resp.ErrorOrNil(); err != nil {
			return err
		}

		fmt.Print(resp.Text())

		return nil
	},
}
