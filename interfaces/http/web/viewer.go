// Package web serves the embedded visualization page. The page is the
// reference client of the graph endpoint: it mirrors the normalization and
// layout semantics of the graphview package in the browser with D3.
package web

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

// ViewerConfig feeds the template.
type ViewerConfig struct {
	Title        string
	CanvasHeight int
}

// Viewer renders the single-page graph client.
type Viewer struct {
	page   []byte
	logger *zap.Logger
}

// NewViewer pre-renders the page once at startup.
func NewViewer(cfg ViewerConfig, logger *zap.Logger) (*Viewer, error) {
	if cfg.Title == "" {
		cfg.Title = "History graph"
	}
	tmpl, err := template.New("viewer").Parse(viewerTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, err
	}
	return &Viewer{page: buf.Bytes(), logger: logger}, nil
}

// ServeHTTP answers with the pre-rendered page.
func (v *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(v.page); err != nil {
		v.logger.Debug("viewer write failed", zap.Error(err))
	}
}

const viewerTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            margin: 0;
            background: #f5f5f5;
        }
        #toolbar { padding: 8px; background: #fff; border-bottom: 1px solid #ddd; }
        #hid { width: 24em; font-family: monospace; }
        svg { width: 100vw; height: {{.CanvasHeight}}px; background: white; }
        .node { cursor: pointer; }
        .node circle.internal { fill: #4a90d9; }
        .node circle.leaf { fill: #2faf64; }
        .node circle.empty { fill: #bbb; }
        .node text {
            font-size: 11px;
            pointer-events: none;
            text-anchor: middle;
        }
        .link { fill: none; stroke-width: 1.5; }
        .link.insert { stroke: #2faf64; marker-end: url(#arrow-insert); }
        .link.update { stroke: #999; marker-end: url(#arrow-update); }
    </style>
</head>
<body>
<div id="toolbar">
    <input id="hid" placeholder="revision id" />
    <button id="load">Load</button>
    <button id="reload" disabled>Reload</button>
    <span id="status"></span>
</div>
<svg></svg>
<script>
const width = document.body.clientWidth || 960;
const height = {{.CanvasHeight}};

const svg = d3.select("svg");
const defs = svg.append("defs");
for (const reason of ["insert", "update"]) {
    defs.append("marker")
        .attr("id", "arrow-" + reason)
        .attr("viewBox", "0 -5 10 10")
        .attr("refX", 18).attr("refY", 0)
        .attr("markerWidth", 6).attr("markerHeight", 6)
        .attr("orient", "auto")
      .append("path")
        .attr("d", "M0,-5L10,0L0,5")
        .attr("fill", reason === "insert" ? "#2faf64" : "#999");
}

// Nil-parent edges get a synthetic starting node so every edge has two
// endpoints. Ids are keyed on edge order.
function normalize(doc) {
    const nodes = doc.nodes.map(n => Object.assign({}, n));
    const edges = doc.edges.map(e => Object.assign({}, e));
    const parents = new Set();
    let roots = 0;
    edges.forEach(e => {
        if (e.parent === null) {
            const id = "empty-before-" + roots++;
            nodes.push({hid: id, empty: true, x: width / 10, y: height / 2});
            e.source = id;
        } else {
            e.source = e.parent;
            parents.add(e.parent);
        }
        e.target = e.hist;
    });
    for (const n of nodes) {
        n.leaf = !n.empty && !parents.has(n.hid);
    }
    return {nodes: nodes, edges: edges};
}

// Same rule as the server-side label: no pid key at all means no label,
// a blank pid gets a placeholder.
function label(n) {
    if (n.empty || !("pid" in n)) return "";
    return "[" + (n.pid || "<NULL>") + "] " + n.title;
}

function kind(n) {
    return n.empty ? "empty" : (n.leaf ? "leaf" : "internal");
}

// Arc with radius equal to the chord keeps sibling edges apart.
function arc(d) {
    const dx = d.target.x - d.source.x;
    const dy = d.target.y - d.source.y;
    const r = Math.sqrt(dx * dx + dy * dy);
    return "M" + d.source.x + "," + d.source.y +
           " A" + r + "," + r + " 0 0,1 " + d.target.x + "," + d.target.y;
}

const simulation = d3.forceSimulation()
    .force("link", d3.forceLink().id(d => d.hid).distance(100))
    .force("charge", d3.forceManyBody())
    .force("center", d3.forceCenter(width / 2, height / 2));

function render(doc) {
    const graph = normalize(doc);

    const link = svg.append("g").selectAll("path")
        .data(graph.edges).enter()
      .append("path")
        .attr("class", d => "link " + d.reason);

    const node = svg.append("g").selectAll("g")
        .data(graph.nodes).enter()
      .append("g")
        .attr("class", "node")
        .call(d3.drag()
            .on("start", (event, d) => {
                if (!event.active) simulation.alphaTarget(0.3).restart();
                d.fx = d.x;
                d.fy = d.y;
            })
            .on("drag", (event, d) => {
                d.fx = event.x;
                d.fy = event.y;
            })
            .on("end", (event, d) => {
                if (!event.active) simulation.alphaTarget(0);
                d.fx = null;
                d.fy = null;
            }));

    node.append("circle").attr("r", 8).attr("class", d => kind(d));
    node.append("text").attr("dy", -12).text(d => label(d));

    simulation.nodes(graph.nodes).on("tick", () => {
        link.attr("d", arc);
        node.attr("transform", d => "translate(" + d.x + "," + d.y + ")");
    });
    simulation.force("link").links(graph.edges);
    simulation.alpha(1).restart();
}

// Reload repeats the last successful fetch; it stays disabled until one
// load has come back.
let loadedHid = null;

function load(hid) {
    // The canvas clears before the response lands, so a failed or slow
    // fetch leaves an empty canvas rather than the previous graph.
    svg.selectAll("g").remove();
    d3.select("#status").text("loading...");
    fetch("/graph/" + encodeURIComponent(hid))
        .then(resp => {
            if (!resp.ok) throw new Error("HTTP " + resp.status);
            return resp.json();
        })
        .then(doc => {
            loadedHid = hid;
            document.getElementById("reload").disabled = false;
            d3.select("#status").text(doc.nodes.length + " revisions");
            render(doc);
        })
        .catch(err => d3.select("#status").text(String(err)));
}

document.getElementById("load").addEventListener("click", () => {
    const hid = document.getElementById("hid").value.trim();
    if (hid) load(hid);
});

document.getElementById("reload").addEventListener("click", () => {
    if (loadedHid !== null) load(loadedHid);
});
</script>
</body>
</html>`
