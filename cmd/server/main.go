package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"geotopo/pkg/api"
	"geotopo/pkg/graph"
	"geotopo/pkg/load"
)

func main() {
	input := flag.String("input", "", "Path to input edges (.geojson or .osm.pbf)")
	tolerance := flag.Float64("tolerance", 0, "Node merge tolerance in coordinate units")
	zOrient := flag.Bool("z-orient", false, "Orient edges from higher to lower elevation")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	nearestDist := flag.Float64("nearest-dist", 0.01, "Max nearest-node search distance in coordinate units")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: server --input <edges.geojson|roads.osm.pbf> [--tolerance t] [--z-orient] [--port 8080]")
		os.Exit(1)
	}

	start := time.Now()

	records, err := loadRecords(*input)
	if err != nil {
		log.Fatalf("Failed to load edges: %v", err)
	}
	log.Printf("Loaded %d edge records", len(records))

	g, err := graph.Build(records, graph.BuildOptions{Tolerance: *tolerance, ZOrient: *zOrient})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(g, *nearestDist)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

func loadRecords(path string) ([]graph.EdgeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".geojson"), strings.HasSuffix(path, ".json"):
		return load.GeoJSON(f)
	case strings.HasSuffix(path, ".pbf"):
		return load.OSM(context.Background(), f, load.OSMOptions{})
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}
