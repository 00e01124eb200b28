// Command vrcinfo inspects ViewRanger VRC raster containers: header
// fields, individual tile contents, sparse data-coverage queries, and a
// directory-wide scan. It is a read-only diagnostic tool; there is no
// write or convert subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	noisy     bool
	cacheSize int
)

func main() {
	root := &cobra.Command{
		Use:   "vrcinfo",
		Short: "Inspect ViewRanger VRC raster map containers",
	}
	root.PersistentFlags().BoolVar(&noisy, "noisy", false, "log diagnostic-level messages in addition to recoverable ones")
	root.PersistentFlags().IntVar(&cacheSize, "cache-size", 0, "sub-tile decode cache size (0 = default)")

	root.AddCommand(newHeaderCmd(), newTileCmd(), newCoverageCmd(), newScanCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
