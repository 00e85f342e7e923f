// Package pkg provides the core libraries for Orbit radial diagrams.
//
// # Overview
//
// Orbit renders a hierarchy as a radial diagram: the root at the centre,
// its children on an inner ring, and grandchildren on an outer ring. The
// pkg directory is organized into three main areas:
//
//  1. Domain - [hierarchy], [geometry], [display] (the tree, its layout,
//     and responsive sizing)
//  2. Engine - [state], [scene], [viewport], [diagram] (transactional
//     state, keyed reconciliation with animation, zoom/pan, and the
//     instance lifecycle shell)
//  3. Edges - [datasource], [cache], [export], [events], [errors],
//     [observability] (fetching, caching, static artifacts, and the
//     ambient plumbing)
//
// # Architecture
//
// The typical data flow through Orbit:
//
//	Snapshot source (file, HTTP, websocket stream)
//	         ↓
//	    [hierarchy] package (validated arena tree)
//	         ↓
//	    [state] package (transactional visual state)
//	         ↓
//	    [scene] package (keyed reconcilers + animation)
//	         ↓
//	    Surface (terminal view, HTTP serve, SVG/PNG export)
//
// # Quick Start
//
//	tree, _ := hierarchy.ReadTreeFile("snapshot.json")
//	d, _ := diagram.New(diagram.Options{
//	    Surface: scene.NewMemorySurface(),
//	    Data:    tree,
//	})
//	defer d.Destroy()
//	_ = d.Select("some-node")
package pkg
