// Package wiring draws the round structure of a cipher definition as a
// graphviz digraph.
package wiring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"toyblock/pkg/engine"

	"github.com/goccy/go-graphviz"
)

var ErrFormat = errors.New("unsupported diagram format")

const header = `digraph %q {
    graph [fontname = "monospace" rankdir=TB splines=true nodesep=0.3];
    node [fontname = "courier new" shape=box style=rounded];
    edge [fontname = "courier new" fontsize=9];
    bgcolor=transparent;
`

// Dot picks SPNDot or FeistelDot from the definition's composition.
func Dot(def *engine.Definition, rounds int) (string, error) {
	if err := check(def, rounds); err != nil {
		return "", err
	}
	if def.Composition == engine.SPN {
		return SPNDot(def, rounds)
	}
	return FeistelDot(def, rounds)
}

func check(def *engine.Definition, rounds int) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if rounds < 1 {
		return fmt.Errorf("%s: rounds must be >= 1, got %d: %w", def.Name, rounds, engine.ErrConfiguration)
	}
	if need := def.RequiredKeys(rounds); len(def.Schedule(0, rounds)) < need {
		return fmt.Errorf("%s: schedule cannot feed %d rounds: %w", def.Name, rounds, engine.ErrConfiguration)
	}
	return nil
}

func sboxID(round, chunk int) string { return fmt.Sprintf("r%d_s%d", round, chunk) }

// SPNDot draws one node per S-box and one edge per P-box wire. Round keys
// are dashed edges into the S-boxes they are mixed in front of; the last
// round has no P-box and mixes a final key into the output.
func SPNDot(def *engine.Definition, rounds int) (string, error) {
	if def.Composition != engine.SPN {
		return "", fmt.Errorf("%s is %s: %w", def.Name, def.Composition, engine.ErrConfiguration)
	}
	if err := check(def, rounds); err != nil {
		return "", err
	}
	l := def.SPN
	chunks := def.BlockWidth / l.Chunk

	var b strings.Builder
	fmt.Fprintf(&b, header, def.Name)
	fmt.Fprintf(&b, "    plaintext [shape=plaintext label=\"plaintext (%d bit)\"];\n", def.BlockWidth)
	fmt.Fprintf(&b, "    ciphertext [shape=plaintext label=\"ciphertext\"];\n")

	for r := 1; r <= rounds; r++ {
		fmt.Fprintf(&b, "    K%d [shape=ellipse label=\"⊕ K%d\"];\n", r, r)
		fmt.Fprintf(&b, "    { rank=same;")
		for j := chunks - 1; j >= 0; j-- {
			fmt.Fprintf(&b, " %s [label=\"S\"];", sboxID(r, j))
		}
		fmt.Fprintf(&b, " }\n")
		for j := 0; j < chunks; j++ {
			fmt.Fprintf(&b, "    K%d -> %s [style=dashed arrowhead=none color=grey];\n", r, sboxID(r, j))
			if r == 1 {
				fmt.Fprintf(&b, "    plaintext -> %s;\n", sboxID(r, j))
			}
		}
		if r == rounds {
			break
		}
		for i, src := range l.PBox.Positions {
			fmt.Fprintf(&b, "    %s -> %s [label=\"%d→%d\" arrowsize=0.5];\n",
				sboxID(r, src/l.Chunk), sboxID(r+1, i/l.Chunk), src, i)
		}
	}

	fmt.Fprintf(&b, "    K%d [shape=ellipse label=\"⊕ K%d\"];\n", rounds+1, rounds+1)
	for j := 0; j < chunks; j++ {
		fmt.Fprintf(&b, "    %s -> ciphertext;\n", sboxID(rounds, j))
	}
	fmt.Fprintf(&b, "    K%d -> ciphertext [style=dashed arrowhead=none color=grey];\n", rounds+1)
	b.WriteString("}\n")
	return b.String(), nil
}

// FeistelDot draws IP, the f_K rounds with SW between them, and IP^-1.
func FeistelDot(def *engine.Definition, rounds int) (string, error) {
	if def.Composition != engine.Feistel {
		return "", fmt.Errorf("%s is %s: %w", def.Name, def.Composition, engine.ErrConfiguration)
	}
	if err := check(def, rounds); err != nil {
		return "", err
	}
	l := def.Feistel

	var b strings.Builder
	fmt.Fprintf(&b, header, def.Name)
	fmt.Fprintf(&b, "    plaintext [shape=plaintext label=\"plaintext (%d bit)\"];\n", def.BlockWidth)
	fmt.Fprintf(&b, "    ip [label=%q];\n", l.IP.Name)
	b.WriteString("    plaintext -> ip;\n")

	prev := "ip"
	for r := 1; r <= rounds; r++ {
		if r > 1 {
			sw := fmt.Sprintf("sw%d", r-1)
			fmt.Fprintf(&b, "    %s [label=%q];\n", sw, l.SW.Name)
			fmt.Fprintf(&b, "    %s -> %s;\n", prev, sw)
			prev = sw
		}
		fk := fmt.Sprintf("fk%d", r)
		fmt.Fprintf(&b, "    %s [label=\"f_K%d\\nL ⊕ F(R, K%d), R\\n%s, S0|S1, %s\"];\n", fk, r, r, l.EP.Name, l.P4.Name)
		fmt.Fprintf(&b, "    K%d [shape=ellipse];\n", r)
		fmt.Fprintf(&b, "    K%d -> %s [style=dashed arrowhead=none color=grey];\n", r, fk)
		fmt.Fprintf(&b, "    %s -> %s;\n", prev, fk)
		prev = fk
	}
	fmt.Fprintf(&b, "    ipinv [label=%q];\n", l.IPInv.Name)
	b.WriteString("    ciphertext [shape=plaintext];\n")
	fmt.Fprintf(&b, "    %s -> ipinv;\n    ipinv -> ciphertext;\n", prev)
	b.WriteString("}\n")
	return b.String(), nil
}

// Render lays out dot through graphviz. Format is svg, png or dot; dot
// returns the layout annotated source.
func Render(ctx context.Context, dot string, format string) ([]byte, error) {
	var f graphviz.Format
	switch strings.ToLower(format) {
	case "svg":
		f = graphviz.SVG
	case "png":
		f = graphviz.PNG
	case "dot":
		f = graphviz.XDOT
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrFormat)
	}

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse dot: %w", err)
	}
	defer graph.Close()

	g, err := graphviz.New(ctx)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, f, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
