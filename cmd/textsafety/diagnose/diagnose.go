package diagnose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/safety"
	"github.com/flarebyte/textsafety/internal/stage"
)

var (
	flagConfig string
	flagText   string
	flagPretty bool
)

// Cmd implements `textsafety diagnose`.
var Cmd = &cobra.Command{
	Use:           "diagnose",
	Short:         "Classify one text with the configured service and show the raw outcome",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig == "" {
			return errors.New("missing required flag: --config")
		}
		if !cmd.Flags().Changed("text") {
			return errors.New("missing required flag: --text")
		}
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		return diagnose(cmd.Context(), cfg.Stage, safety.NewClient(), flagText, flagPretty, os.Stdout)
	},
}

func init() {
	Cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (.cue or .yaml)")
	Cmd.Flags().StringVar(&flagText, "text", "", "Text to classify")
	Cmd.Flags().BoolVar(&flagPretty, "pretty", false, "Indent JSON output")
}

type result struct {
	Endpoint  string  `json:"endpoint"`
	Threshold float64 `json:"threshold"`
	Skipped   bool    `json:"skipped"`
	Outcome   string  `json:"outcome,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Status    int     `json:"status,omitempty"`
	Message   string  `json:"message,omitempty"`
	Fields    fields  `json:"fields"`
}

type fields struct {
	IsSafe   bool    `json:"is_safe"`
	Category string  `json:"risk_category"`
	Score    float64 `json:"risk_score"`
}

// diagnose performs the same call and fallback a stage copy makes for one
// record, without a schema.
func diagnose(ctx context.Context, cfg config.Stage, c stage.Classifier, text string, pretty bool, w io.Writer) error {
	r := result{Endpoint: cfg.ServiceURL, Threshold: cfg.Threshold}
	var t stage.Triple
	if text == "" {
		r.Skipped = true
		t = stage.SkipTriple()
	} else {
		o := c.Classify(ctx, safety.Request{Endpoint: cfg.ServiceURL, Text: text, Threshold: cfg.Threshold})
		r.Outcome = o.Kind.String()
		r.Reason = string(o.Reason)
		r.Status = o.Status
		r.Message = o.Message
		t = stage.Resolve(o)
	}
	r.Fields = fields{IsSafe: t.IsSafe, Category: t.Category, Score: t.Score}

	api := jsoniter.ConfigCompatibleWithStandardLibrary
	var b []byte
	var err error
	if pretty {
		b, err = api.MarshalIndent(r, "", "  ")
	} else {
		b, err = api.Marshal(r)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
