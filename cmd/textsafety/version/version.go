package version

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/flarebyte/textsafety/internal/buildinfo"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(os.Stdout, os.Stderr, buildinfo.Current(), time.Now())
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}

type versionReport struct {
	buildinfo.Info
	Timestamp string `json:"timestamp"`
}

// printVersion writes one "textsafety <summary>" line, or with --json the
// build metadata as indented JSON on stdout and the line on stderr.
func printVersion(stdout, stderr io.Writer, info buildinfo.Info, now time.Time) error {
	if flagShort || !flagJSON {
		_, err := fmt.Fprintf(stdout, "textsafety %s\n", info)
		return err
	}
	_, _ = fmt.Fprintf(stderr, "textsafety version: %s\n", info)
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(versionReport{Info: info, Timestamp: now.UTC().Format(time.RFC3339Nano)})
}
