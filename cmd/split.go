package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/smazurov/histonode/internal/dump"
	"github.com/smazurov/histonode/internal/frame"
	"github.com/spf13/cobra"
)

// CreateSplitCmd creates the split command.
func CreateSplitCmd() *cobra.Command {
	var offset int64

	cmd := &cobra.Command{
		Use:   "split <dump-file> <width> <height> <out-prefix>",
		Short: "Split a raw dump into PGM images",
		Long: `Cuts a raw memory dump into consecutive 8-bit greyscale PGM images of the given size, ` +
			`named <out-prefix>0001.pgm, <out-prefix>0002.pgm and so on. ` +
			fmt.Sprintf("A camera frame's luma plane is %dx%d.", frame.Width, frame.Height),
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid width %q: %w", args[1], err)
			}
			height, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[2], err)
			}

			out := cmd.OutOrStdout()
			if info, statErr := os.Stat(args[0]); statErr == nil && width > 0 && height > 0 {
				size := int64(width * height)
				fmt.Fprintf(out, "File: %s\n", args[0])
				fmt.Fprintf(out, "Size: %d bytes\n", info.Size())
				fmt.Fprintf(out, "Frame: %dx%d => %d bytes per frame\n", width, height, size)
				fmt.Fprintf(out, "Total full frames in dump: %d\n", (info.Size()-offset)/size)
			}

			written, err := dump.Split(args[0], dump.SplitOptions{
				Width:  width,
				Height: height,
				Prefix: args[3],
				Offset: offset,
			})
			for _, name := range written {
				fmt.Fprintf(out, "Wrote %s\n", name)
			}
			return err
		},
	}

	cmd.Flags().Int64Var(&offset, "offset", 0, "Bytes to skip before the first image")
	return cmd
}
