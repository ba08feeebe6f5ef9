// Command layout fetches a history graph and runs the force layout to
// rest without a browser, emitting the settled geometry as JSON or SVG.
// It is the headless twin of the embedded viewer page, useful for
// pre-rendering and for eyeballing layout changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"html"
	"log"
	"os"
	"time"

	"graphdoc/application/graphview"
	"graphdoc/domain/graph"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8000", "server base URL")
		hid     = flag.String("hid", "", "revision id of the graph to load")
		width   = flag.Float64("width", 960, "canvas width")
		height  = flag.Float64("height", 600, "canvas height")
		format  = flag.String("format", "json", "output format: json or svg")
		maxTick = flag.Int("max-ticks", 1000, "tick limit if the layout never settles")
		timeout = flag.Duration("timeout", 30*time.Second, "fetch timeout")
	)
	flag.Parse()

	if *hid == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := graphview.NewHTTPClient(*baseURL)
	session := graphview.NewSession(client, *width, *height)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := session.Load(ctx, *hid); err != nil {
		log.Fatalf("load %s: %v", *hid, err)
	}

	frame := session.Frame()
	for i := 0; i < *maxTick && session.Active(); i++ {
		frame = session.Tick()
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frame); err != nil {
			log.Fatalf("encode frame: %v", err)
		}
	case "svg":
		writeSVG(os.Stdout, frame, *width, *height)
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

func writeSVG(w *os.File, frame graphview.Frame, width, height float64) {
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g">`+"\n", width, height)
	for _, e := range frame.Edges {
		if e.Path == "" {
			continue
		}
		color := "#999"
		if e.Reason == graph.ReasonInsert {
			color = "#2faf64"
		}
		fmt.Fprintf(w, `  <path d="%s" fill="none" stroke="%s"/>`+"\n", e.Path, color)
	}
	for _, n := range frame.Nodes {
		fmt.Fprintf(w, `  <circle cx="%g" cy="%g" r="8" class="%s"/>`+"\n", n.X, n.Y, n.Kind)
		if n.Label != "" {
			fmt.Fprintf(w, `  <text x="%g" y="%g" text-anchor="middle">%s</text>`+"\n",
				n.X, n.Y-12, html.EscapeString(n.Label))
		}
	}
	fmt.Fprintln(w, `</svg>`)
}
