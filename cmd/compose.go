package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/progress"
)

var (
	composeFrame      string
	composeBackground string
	composeScale      float64
	composeOutDir     string
)

var composeCmd = &cobra.Command{
	Use:   "compose <image>...",
	Short: "Frame screenshots on styled backgrounds",
	Long: `Places each image inside a device or window frame on a gradient or solid
background and writes a PNG per input. Inputs may be local paths, http(s)
URLs or data URLs.

Frames:      ` + optionIDs(compositor.Frames) + `
Backgrounds: ` + optionIDs(compositor.Backgrounds),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer logger.Sync()

		// Local paths are the point of this command.
		cfg.Compositor.AllowFiles = true
		composer := newComposer(cfg, logger)

		outDir := composeOutDir
		if outDir == "" {
			outDir = cfg.Compositor.OutputDir
		}

		reporter := progress.NewReporter("Composing")
		reporter.Start(len(args))

		var failed int
		for i, src := range args {
			res, err := composer.Compose(cmd.Context(), compositor.Request{
				Source:     src,
				Frame:      compositor.Frame(composeFrame),
				Background: compositor.Background(composeBackground),
				Scale:      composeScale,
			})
			if err == nil {
				var path string
				// Names carry millisecond timestamps; keep them distinct.
				path, err = res.Save(outDir, time.Now().Add(time.Duration(i)*time.Millisecond))
				if err == nil {
					logger.Info("image written", zap.String("source", src), zap.String("path", path))
				}
			}
			if err != nil {
				failed++
				logger.Error("compose failed", zap.String("source", src), zap.Error(err))
			}
			reporter.Update(i+1, src)
		}
		reporter.Finish()

		if failed > 0 {
			return fmt.Errorf("%d of %d images failed", failed, len(args))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d image(s) to %s\n", len(args), outDir)
		return nil
	},
}

func optionIDs(opts []compositor.Option) string {
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = fmt.Sprintf("%s (%s)", o.ID, o.Name)
	}
	return strings.Join(ids, ", ")
}

func init() {
	composeCmd.Flags().StringVar(&composeFrame, "frame", string(compositor.FrameBrowser), "frame style")
	composeCmd.Flags().StringVar(&composeBackground, "background", string(compositor.BackgroundAurora), "background style")
	composeCmd.Flags().Float64Var(&composeScale, "scale", 0, "device pixel ratio (default from config)")
	composeCmd.Flags().StringVarP(&composeOutDir, "out", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(composeCmd)
}
