package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "jobsfinder",
	Short: "rank job records by distance from a location",
	Long: `
jobsfinder resolves a location query (ZIP code or "city, state") against a
reference place dataset and lists the job records closest to it, sorted by
great-circle distance and filtered to a radius.
`,
}

// Version is stamped by the build.
var Version = "dev"

// Execute runs the root command.
func Execute(version string) {
	Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
