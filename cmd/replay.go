package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/smazurov/histonode/internal/config"
	"github.com/smazurov/histonode/internal/dump"
	"github.com/smazurov/histonode/internal/exposure"
	"github.com/smazurov/histonode/internal/logging"
	"github.com/smazurov/histonode/internal/nvm"
	"github.com/spf13/cobra"
)

// CreateReplayCmd creates the replay command.
func CreateReplayCmd() *cobra.Command {
	var (
		offset     int64
		startFrame int32
		encode     bool
		iso        int32
		shutter    int32
		settings   string
		lumaPrefix string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "replay <dump-file>",
		Short: "Run the histogram pass over a raw frame dump",
		Long: `Feeds every frame of a raw capture dump through the histogram, overlay and auto-exposure pass ` +
			`against a simulated host and prints one line per frame. The settings file, if given, is read ` +
			`but never written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The root command's --config flag, when present, supplies logging levels
			configFile, _ := cmd.Flags().GetString("config")
			loggingConfig := config.LoadLoggingConfig(configFile)
			if cmd.Flags().Changed("log-level") {
				loggingConfig.Level = logLevel
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("pipeline").With("dump", args[0])

			store := nvm.NewMemory()
			if settings != "" {
				values, err := nvm.ReadFile(settings)
				if err != nil {
					return err
				}
				for name, v := range values {
					if idx, ok := nvm.Lookup(name); ok {
						store.Set(idx, v)
					}
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open dump: %w", err)
			}
			defer f.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FRAME\tCOUNTER\tPHASE\tREGION\tBRANCH\tISO\tSHUTTER\tQUANTUM\tIMAGE")

			n, err := dump.Replay(cmd.Context(), f, dump.ReplayOptions{
				Offset:     offset,
				StartFrame: startFrame,
				Encode:     encode,
				Exposure:   exposure.Pair{ISO: iso, Shutter: shutter},
				Store:      store,
				LumaPrefix: lumaPrefix,
			}, func(rf dump.ReplayFrame) error {
				res := rf.Result
				if res.Skipped() {
					_, err := fmt.Fprintf(tw, "%d\t%d\t-\t-\t%s\t\t\t\t\n", rf.Index, res.Frame, res.Reason)
					return err
				}
				next := res.Decision.Next
				_, err := fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
					rf.Index, res.Frame, res.Phase, res.Region, res.Decision.Branch,
					next.ISO, next.Shutter, next.Quantum(), rf.Image)
				return err
			})
			if flushErr := tw.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
			if err != nil {
				return err
			}

			logger.Info("Replay finished", "frames", n)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&offset, "offset", 0, "Bytes to skip before the first frame")
	flags.Int32Var(&startFrame, "start-frame", 100, "Host frame counter before the first frame")
	flags.BoolVar(&encode, "encode", false, "Replay as if recording instead of previewing")
	flags.Int32Var(&iso, "iso", 100, "Initial sensor ISO")
	flags.Int32Var(&shutter, "shutter", 1500, "Initial shutter in microseconds")
	flags.StringVar(&settings, "settings", "", "Settings file to seed the in-memory store from")
	flags.StringVar(&lumaPrefix, "luma-prefix", "", "Write each composited luma plane to <prefix>NNNN.pgm")
	flags.StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	return cmd
}
