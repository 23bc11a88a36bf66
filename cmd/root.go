package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/strata/cmd/gen"
)

var (
	// The strata server host. Empty means "use the environment".
	host string

	// The strata server port. Zero means "use the environment".
	port int
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Command line client for the strata tick database",
	Long: `Command line client for the strata tick database

strata speaks the tick server's line protocol over TCP: PING, INFO,
ADD/BULKADD, GET ... AS JSON, CLEAR, FLUSH, CREATE and USE.
`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&host, "host", "a", "", "The strata server host (default STRATA_HOST, or localhost)")
	flags.IntVarP(&port, "port", "p", 0, "The strata server port (default STRATA_PORT, or 9001)")

	rootCmd.AddCommand(
		PingCmd,
		InfoCmd,
		GetCmd,
		ImportCmd,
		ExportCmd,
		ProxyCmd,
		VersionCmd,
		gen.RootCmd,
	)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
