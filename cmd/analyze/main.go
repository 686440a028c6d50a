package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"geotopo/pkg/centrality"
	"geotopo/pkg/graph"
	"geotopo/pkg/load"
)

func main() {
	input := flag.String("input", "", "Path to input edges (.geojson or .osm.pbf)")
	output := flag.String("output", "centrality.csv", "Output CSV file path")
	tolerance := flag.Float64("tolerance", 0, "Node merge tolerance in coordinate units")
	zOrient := flag.Bool("z-orient", false, "Orient edges from higher to lower elevation")
	orientation := flag.Int("orientation", 1, "Orientation: 1 directed, 2 reversed, 3 undirected")
	weight := flag.String("weight", load.LengthAttribute, "Weight attribute name (empty = unweighted)")
	normalized := flag.Bool("normalized", false, "Normalize betweenness by (n-1)(n-2)")
	workers := flag.Int("workers", 0, "Parallel source passes (0 = GOMAXPROCS)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyze --input <edges.geojson|roads.osm.pbf> [--output centrality.csv] [--orientation 1|2|3] [--weight length]")
		os.Exit(1)
	}

	o, err := graph.ParseOrientation(*orientation)
	if err != nil {
		log.Fatalf("Invalid orientation: %v", err)
	}
	spec := graph.Unweighted()
	if *weight != "" {
		spec = graph.WeightAttribute(*weight)
	}

	// Ctrl-C aborts the analysis cleanly; partial accumulation is discarded.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	start := time.Now()

	records, err := loadRecords(ctx, *input)
	if err != nil {
		log.Fatalf("Failed to load edges: %v", err)
	}
	log.Printf("Loaded %d edge records", len(records))

	g, err := graph.Build(records, graph.BuildOptions{Tolerance: *tolerance, ZOrient: *zOrient})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	log.Printf("Analyzing centrality (%s, weight=%s)...", o, spec)
	results, err := centrality.Analyze(ctx, g, centrality.Config{
		Orientation: o,
		Weights:     spec,
		Normalized:  *normalized,
		Workers:     *workers,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := writeCSV(*output, g, results); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	log.Printf("Done in %s. Output: %s (%d nodes)", time.Since(start).Round(time.Millisecond), *output, len(results))
}

func loadRecords(ctx context.Context, path string) ([]graph.EdgeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".geojson"), strings.HasSuffix(path, ".json"):
		return load.GeoJSON(f)
	case strings.HasSuffix(path, ".pbf"):
		return load.OSM(ctx, f, load.OSMOptions{})
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

func writeCSV(path string, g *graph.Graph, results map[int]centrality.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "betweenness", "closeness"}); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		res := results[n.ID]
		row := []string{
			strconv.Itoa(n.ID),
			strconv.FormatFloat(res.Betweenness, 'g', -1, 64),
			strconv.FormatFloat(res.Closeness, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
