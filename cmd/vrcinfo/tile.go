package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pspoerri/vrcraster/internal/vrc"
)

func newTileCmd() *cobra.Command {
	var overview int
	cmd := &cobra.Command{
		Use:   "tile <file.vrc> <bx> <by>",
		Short: "Decode one block and report per-band pixel statistics",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bx, by int
			if _, err := fmt.Sscanf(args[1], "%d", &bx); err != nil {
				return err
			}
			if _, err := fmt.Sscanf(args[2], "%d", &by); err != nil {
				return err
			}

			c, err := vrc.Open(args[0], buildConfig())
			if err != nil {
				return err
			}
			defer c.Close()

			blk, err := c.ReadBlock(overview, bx, by)
			if err != nil {
				return err
			}
			fmt.Printf("block %d,%d @ overview %d: %d x %d, %d band(s)\n", bx, by, overview, blk.Width, blk.Height, len(blk.Bands))
			for i, band := range blk.Bands {
				min, max, sum := byte(255), byte(0), 0
				for _, v := range band {
					if v < min {
						min = v
					}
					if v > max {
						max = v
					}
					sum += int(v)
				}
				mean := 0.0
				if len(band) > 0 {
					mean = float64(sum) / float64(len(band))
				}
				fmt.Printf("  band %d: min=%d max=%d mean=%.2f\n", i+1, min, max, mean)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&overview, "overview", -1, "overview level (-1 = base)")
	return cmd
}
