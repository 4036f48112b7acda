package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackaudit/pkg/deps"
)

// ToDOT converts the set to Graphviz DOT: one box per manifest, one ellipse
// per unique dependency, and an edge for every declaration. Dependencies
// whose lookup failed are drawn in red.
func ToDOT(s *Set) string {
	var buf bytes.Buffer
	buf.WriteString("digraph stackaudit {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	groups := s.Grouped()
	for _, g := range groups {
		fmt.Fprintf(&buf, "  %s [shape=box, style=\"rounded,filled\", fillcolor=lightsteelblue, label=%s];\n",
			dotQuote(manifestID(g.Manifest)), dotQuote(g.Manifest))
	}

	buf.WriteString("\n")
	for _, d := range s.Unique() {
		attrs := []string{"shape=ellipse", "label=" + dotQuote(d.Name+"\n"+d.Version+"\n"+d.License)}
		if d.Unknown() {
			attrs = append(attrs, "color=red", "fontcolor=red")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(dependencyID(d.Key())), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, g := range groups {
		seen := make(map[deps.Key]bool, len(g.Dependencies))
		for _, d := range g.Dependencies {
			if seen[d.Key()] {
				continue
			}
			seen[d.Key()] = true
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(manifestID(g.Manifest)), dotQuote(dependencyID(d.Key())))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// WriteDOT writes [ToDOT] output to w.
func WriteDOT(w io.Writer, s *Set) error {
	_, err := io.WriteString(w, ToDOT(s))
	return err
}

// WriteSVG renders the dependency graph to SVG with Graphviz.
func WriteSVG(ctx context.Context, w io.Writer, s *Set) error {
	svg, err := RenderSVG(ctx, ToDOT(s))
	if err != nil {
		return err
	}
	_, err = w.Write(svg)
	return err
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func manifestID(path string) string { return "manifest:" + path }

func dependencyID(k deps.Key) string { return "package:" + k.Name + "@" + k.Version }

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// dotQuote produces a DOT double-quoted string. Unlike %q it leaves
// non-ASCII text as is, which Graphviz reads as UTF-8.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
