package validate

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/stagefile"
)

var (
	cfgPath   string
	writePath string
)

// Cmd represents the `textsafety validate` command.
var Cmd = &cobra.Command{
	Use:           "validate",
	Short:         "Check a stage config and optionally save it as canonical YAML",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("missing required flag: --config")
		}
		return validate(cfgPath, writePath, os.Stdout)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.cue or .yaml)")
	Cmd.Flags().StringVar(&writePath, "write", "", "Write the resolved config as canonical YAML to this path")
}

type report struct {
	OK      bool            `json:"ok"`
	Remarks []config.Remark `json:"remarks"`
}

// validate prints one JSON line with the check remarks. The file is only
// written when the config has no error remarks.
func validate(path, out string, w io.Writer) error {
	run, err := config.Load(path)
	if err != nil {
		return err
	}
	remarks := config.Check(run.Stage)
	checkErr := config.FirstError(remarks)
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(report{OK: checkErr == nil, Remarks: remarks})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, string(b)); err != nil {
		return err
	}
	if checkErr != nil {
		return checkErr
	}
	if out != "" {
		return stagefile.Write(out, run)
	}
	return nil
}
