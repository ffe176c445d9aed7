package viz

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"

	"github.com/matsen/kgviz/internal/config"
	"github.com/matsen/kgviz/internal/graph"
)

// visNetworkURL is the standalone vis-network bundle loaded by the page.
const visNetworkURL = "https://unpkg.com/vis-network@9/standalone/umd/vis-network.min.js"

// ErrNilGraph is returned when asked to render a nil graph.
var ErrNilGraph = errors.New("graph cannot be nil")

// compiledTemplate is parsed at init time to fail fast on template errors.
var (
	compiledTemplate      *template.Template
	compiledEmptyTemplate *template.Template
)

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
	compiledEmptyTemplate = template.Must(template.New("empty").Parse(emptyTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title  string // page title
	Height string // CSS height of the network canvas
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Title:  "Knowledge Graph",
		Height: "100vh",
	}
}

var cssLength = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?(px|vh|%|em|rem)$`)

func validateHeight(height string) error {
	if height == "" || cssLength.MatchString(height) {
		return nil
	}
	return fmt.Errorf("invalid height %q: must be a CSS length such as 750px or 100vh", height)
}

// templateData holds data for the HTML template.
type templateData struct {
	Title       string
	Height      string
	ScriptURL   string
	NodesJSON   template.JS
	EdgesJSON   template.JS
	OptionsJSON template.JS
	NodeCount   int
	EdgeCount   int
}

// GenerateHTML renders g as a self-contained vis-network page styled by s.
// An empty graph yields an explanatory empty-state page.
func GenerateHTML(g *graph.Graph, s config.Settings, opts HTMLOptions) (string, error) {
	if g == nil {
		return "", ErrNilGraph
	}
	if err := validateHeight(opts.Height); err != nil {
		return "", err
	}
	defaults := DefaultOptions()
	if opts.Title == "" {
		opts.Title = defaults.Title
	}
	if opts.Height == "" {
		opts.Height = defaults.Height
	}

	data := BuildGraphData(g, s)
	if data.IsEmpty() {
		return generateEmptyHTML(opts.Title)
	}

	nodesJSON, edgesJSON, err := data.ToVisJSON()
	if err != nil {
		return "", err
	}
	optionsJSON, err := OptionsJSON(s)
	if err != nil {
		return "", err
	}

	td := templateData{
		Title:       opts.Title,
		Height:      opts.Height,
		ScriptURL:   visNetworkURL,
		NodesJSON:   template.JS(nodesJSON),
		EdgesJSON:   template.JS(edgesJSON),
		OptionsJSON: template.JS(optionsJSON),
		NodeCount:   len(data.Nodes),
		EdgeCount:   len(data.Edges),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, td); err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	return buf.String(), nil
}

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := compiledEmptyTemplate.Execute(&buf, struct{ Title string }{title}); err != nil {
		return "", fmt.Errorf("executing empty-state template: %w", err)
	}
	return buf.String(), nil
}

const emptyTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>The input produced no nodes to display.</p>
    <p>Check the input with <code>kgviz inspect</code></p>
  </div>
</body>
</html>`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #network {
      width: 100%;
      height: {{.Height}};
      background: white;
    }
    #summary {
      position: absolute;
      top: 8px;
      left: 12px;
      font-size: 12px;
      color: #888;
      z-index: 10;
    }
    div.vis-tooltip {
      white-space: pre-line;
      font-size: 13px;
    }
  </style>
</head>
<body>
  <div id="summary">{{.NodeCount}} nodes, {{.EdgeCount}} edges</div>
  <div id="network"></div>
  <script>
    (function() {
      const nodes = new vis.DataSet({{.NodesJSON}});
      const edges = new vis.DataSet({{.EdgesJSON}});
      const options = {{.OptionsJSON}};

      const network = new vis.Network(
        document.getElementById('network'),
        { nodes: nodes, edges: edges },
        options
      );

      // Stop the simulation once the layout has settled.
      network.once('stabilizationIterationsDone', function() {
        network.setOptions({ physics: { enabled: false } });
      });

      // Click highlighting
      network.on('click', function(params) {
        if (params.nodes.length === 0) {
          nodes.update(nodes.get().map(function(n) { return { id: n.id, opacity: 1 }; }));
          return;
        }
        const selected = params.nodes[0];
        const keep = new Set(network.getConnectedNodes(selected));
        keep.add(selected);
        nodes.update(nodes.get().map(function(n) {
          return { id: n.id, opacity: keep.has(n.id) ? 1 : 0.3 };
        }));
      });
    })();
  </script>
</body>
</html>`
