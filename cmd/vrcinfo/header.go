package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pspoerri/vrcraster/internal/vrc"
)

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <file.vrc>",
		Short: "Print the parsed container header and derived geotransform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := vrc.Open(args[0], buildConfig())
			if err != nil {
				return err
			}
			defer c.Close()

			h := c.Header
			w, ht := c.RasterSize()
			gt := c.GeoTransform()
			ovCount, _ := c.OverviewCount()

			fmt.Printf("file: %s\n", args[0])
			fmt.Printf("magic: %v\n", h.Magic)
			fmt.Printf("%s\n", h.String())
			fmt.Printf("country_code: %d\n", h.CountryCode)
			fmt.Printf("title: %q\n", h.Title)
			fmt.Printf("copyright: %q\n", h.Copyright)
			fmt.Printf("device_id: %q\n", h.DeviceID)
			for k, v := range h.Metadata {
				fmt.Printf("metadata[%s] = %q\n", k, v)
			}
			fmt.Printf("raster size: %d x %d\n", w, ht)
			fmt.Printf("band count: %d\n", c.BandCount())
			fmt.Printf("pixel_size: %f\n", h.PixelSize)
			fmt.Printf("top_skip_pixels: %d\n", h.TopSkipPixels)
			fmt.Printf("tile_size_max: %d  tile_size_min: %d  max_overview_count: %d\n", h.TileSizeMax, h.TileSizeMin, h.MaxOverviewCount)
			fmt.Printf("overview_count(band 1, tile 0,0): %d\n", ovCount)
			fmt.Printf("tile grid: %d x %d\n", h.TileXCount, h.TileYCount)
			fmt.Printf("geotransform: left=%f pixel_w=%f top=%f pixel_h=%f\n", gt.Left, gt.PixelW, gt.Top, gt.PixelH)
			fmt.Printf("epsg: %d\n", h.CRS.EPSG)
			return nil
		},
	}
}
