package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pspoerri/vrcraster/internal/vrc"
)

func newCoverageCmd() *cobra.Command {
	var overview int
	cmd := &cobra.Command{
		Use:   "coverage <file.vrc> <x_off> <y_off> <x_size> <y_size>",
		Short: "Report what fraction of a pixel window has tile data, without decoding",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			var xOff, yOff, xSize, ySize int
			for i, dst := range []*int{&xOff, &yOff, &xSize, &ySize} {
				if _, err := fmt.Sscanf(args[i+1], "%d", dst); err != nil {
					return err
				}
			}

			c, err := vrc.Open(args[0], buildConfig())
			if err != nil {
				return err
			}
			defer c.Close()

			status, pct := c.DataCoverage(overview, xOff, yOff, xSize, ySize, 0)
			fmt.Printf("status: %s\n", status)
			fmt.Printf("coverage: %.2f%%\n", pct)
			return nil
		},
	}
	cmd.Flags().IntVar(&overview, "overview", -1, "overview level (-1 = base)")
	return cmd
}
