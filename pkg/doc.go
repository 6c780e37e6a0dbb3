// Package pkg provides the libraries behind palpiteiro, the fantasy football
// lineup renderer.
//
// # Overview
//
// Palpiteiro asks a lineup service for a team, places every player on a
// pitch, downloads player photos and club emblems, and renders the result as
// an interactive field diagram. The pkg directory is organized into four
// areas:
//
//  1. Domain logic: [lineup], [mode], [formation], [scene]
//  2. Acquisition: [assets], [integrations]
//  3. Orchestration: [pipeline]
//  4. Infrastructure: [cache], [storage], [config], [observability]
//
// # Architecture
//
// The data flow through a render:
//
//	Lineup service (or a lineup file)
//	         ↓
//	    [formation] package (rank, plot key, coordinate, captain)
//	         ↓
//	    [assets] package (bounded concurrent downloads)
//	         ↓
//	    [scene] package (compose overlays and hit targets)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
// Render a lineup file to SVG:
//
//	import (
//	    "context"
//	    "github.com/palpiteiro/palpiteiro/pkg/pipeline"
//	)
//
//	l, _ := pipeline.ReadLineupFile("lineup.json")
//	runner := pipeline.NewRunner(nil, nil, nil, nil, nil)
//	defer runner.Close()
//
//	res, _ := runner.RenderLineup(context.Background(), l, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Domain Logic
//
// [lineup] - Players, positions and roster types as returned by the lineup
// service, with validation and canonical ordering.
//
// [mode] - The game modes (season and express) and the lineup request each
// produces, including the default formation scheme.
//
// [formation] - The position map and the layout: ranking inside each
// (roster, position) group by ascending id, plot keys, badge offsets and
// captain marking.
//
// [scene] - Composition of the layout and downloaded assets into a scene of
// overlays and hit targets, plus the drawn pitch. [scene/sink] writes SVG,
// PNG, PDF and JSON.
//
// ## Acquisition
//
// [assets] - Concurrent photo and emblem downloads with timeouts, retries,
// rate limiting, caching and a per-run failure policy.
//
// [integrations] - HTTP plumbing and the lineup service client
// ([integrations/lineupapi]).
//
// ## Orchestration
//
// [pipeline] - The lineup → layout → fetch → compose → render sequence used
// by both the CLI and the HTTP server, with artifact caching.
//
// ## Infrastructure
//
// [cache] - File, Redis and null cache backends with content-hash keys.
//
// [storage] - Render history: memory, file and MongoDB ([storage/mongo])
// stores.
//
// [config] - TOML, .env and environment configuration.
//
// [observability] - Hooks for pipeline, asset and cache events.
//
// [errors] - Structured error codes shared by every package.
package pkg
