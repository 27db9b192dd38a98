package root

import (
	"github.com/flarebyte/textsafety/cmd/textsafety/diagnose"
	"github.com/flarebyte/textsafety/cmd/textsafety/run"
	"github.com/flarebyte/textsafety/cmd/textsafety/serve"
	"github.com/flarebyte/textsafety/cmd/textsafety/validate"
	"github.com/flarebyte/textsafety/cmd/textsafety/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for textsafety.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textsafety",
		Short: "Enrich tabular records with content safety verdicts from a classification service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.Cmd)
	cmd.AddCommand(validate.Cmd)
	cmd.AddCommand(serve.Cmd)
	cmd.AddCommand(diagnose.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
