// cambanzo is the camera cycle CLI: run (acquisition loop), show (grid
// display of arbitrary images), detect (one-off detection pass).
//
// Usage:
//
//	cambanzo run [--config=<path>] [--once]
//	cambanzo show <image>... [--width=N] [--height=N]
//	cambanzo detect <image>... [--config=<path>] [--markdown]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andypayne/cambanzo/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "cambanzo",
	Short: "Camera acquisition cycles with detection and a grid display",
	Long: "Cambanzo drives camera acquisition cycles: capture images from the\n" +
		"configured sources, run object detection over them, archive everything\n" +
		"into a timestamped directory and show the batch in a grid window.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(*cobra.Command, []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat, nil)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
