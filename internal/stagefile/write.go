// Package stagefile persists a stage configuration as canonical YAML that
// config.Load reads back.
package stagefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flarebyte/textsafety/internal/config"
	"gopkg.in/yaml.v3"
)

// Marshal returns canonical YAML bytes for a run configuration. Keys are
// written in a fixed order so rewriting an unchanged file is a no-op.
func Marshal(r config.Run) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	top.Content = append(top.Content, scalarNode("configVersion"), quotedNode(config.CurrentConfigVersion))
	top.Content = append(top.Content, scalarNode("textSafety"), stageNode(r.Stage))
	top.Content = append(top.Content, scalarNode("input"), mapping(
		"path", scalarFrom(r.Input.Path),
		"format", scalarFrom(r.Input.Format),
	))
	top.Content = append(top.Content, scalarNode("output"), mapping(
		"out", scalarFrom(r.Output.Out),
		"format", scalarFrom(r.Output.Format),
	))
	top.Content = append(top.Content, scalarNode("copies"), scalarFrom(r.Copies))
	top.Content = append(top.Content, scalarNode("ui"), mapping(
		"progress", scalarFrom(r.UI.Progress),
		"progressIntervalMs", scalarFrom(r.UI.ProgressIntervalMs),
	))
	top.Content = append(top.Content, scalarNode("log"), mapping(
		"level", scalarFrom(r.Log.Level),
		"format", scalarFrom(r.Log.Format),
	))
	if r.Metrics.Addr != "" {
		top.Content = append(top.Content, scalarNode("metrics"), mapping("addr", scalarFrom(r.Metrics.Addr)))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// Write writes canonical YAML content to path, creating parent directories.
func Write(path string, r config.Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func stageNode(s config.Stage) *yaml.Node {
	return mapping(
		"inputTextField", scalarFrom(s.InputTextField),
		"serviceUrl", scalarFrom(s.ServiceURL),
		"threshold", floatNode(s.Threshold),
		"outputSafeField", scalarFrom(s.OutputSafeField),
		"outputCategoryField", scalarFrom(s.OutputCategoryField),
		"outputScoreField", scalarFrom(s.OutputScoreField),
	)
}

// mapping builds a mapping node from alternating key, value pairs.
func mapping(kv ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, scalarNode(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func quotedNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle}
}

// floatNode keeps a decimal point so 1 reads back as a float.
func floatNode(f float64) *yaml.Node {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		s += ".0"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}
