package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pspoerri/vrcraster/internal/vrc"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file-or-dir>...",
		Short: "Open every .vrc file under the given paths and report pass/fail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectVRCFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .vrc files found in %v", args)
			}

			bar := progressbar.Default(int64(len(files)), "scanning containers")

			var ok, failed int
			for _, f := range files {
				c, err := vrc.Open(f, buildConfig())
				if err != nil {
					failed++
					fmt.Printf("\n%s: FAIL: %v\n", f, err)
				} else {
					ok++
					w, h := c.RasterSize()
					fmt.Printf("\n%s: OK: %dx%d, %d band(s), magic=%v\n", f, w, h, c.BandCount(), c.Header.Magic)
					c.Close()
				}
				bar.Add(1)
			}
			fmt.Printf("\n%d ok, %d failed\n", ok, failed)
			return nil
		},
	}
}

// collectVRCFiles resolves each input path to a list of .vrc files,
// descending into directories (a bare file argument is taken as-is
// regardless of its extension, so an explicit path always scans).
func collectVRCFiles(paths []string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			result = append(result, p)
			continue
		}
		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isVRC(path) {
				result = append(result, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", p, walkErr)
		}
	}
	return result, nil
}

func isVRC(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrc")
}
