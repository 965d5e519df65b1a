// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

/*
Package arc reads, edits, and writes game-data archives (WAD, Zip, GRP,
PAK, LFD, RES, and plain directories) through one uniform entry tree.
Formats are detected from magic signatures with an extension fallback;
payloads load lazily from the backing file on first read.

# Opening

Open an archive and walk its entries:

	a, err := arc.Open("doom2.wad")
	if err != nil {
	    return err
	}
	defer a.Close()
	for _, e := range a.Root().Entries() {
	    data, _ := a.ReadEntry(e)
	    // use data
	}

In-memory sources work the same; the filename only feeds extension
fallback during detection:

	a, err := arc.OpenBytes(buf, "duke3d.grp", arc.OpenOptions{})

Force a format or open read-only:

	a, err := arc.OpenWithOptions("textures", arc.OpenOptions{
	    Format:   arc.FormatDir,
	    ReadOnly: true,
	})

# Editing

Every mutation returns the inverse command for an external undo stack:

	e := arc.NewEntry("DEMO1", data)
	undo, err := a.AddEntry(nil, e, -1)
	if err != nil {
	    return err
	}
	// later
	_, err = undo.Apply(a)

Change notifications are synchronous; unsubscribe with the returned func:

	cancel := a.Subscribe(func(ev arc.Event) {
	    // ev.Kind, ev.Path
	})
	defer cancel()

# Searching

	hits := a.FindAll(arc.SearchOptions{
	    Pattern:   "MAP*",
	    Namespace: "sprites",
	    SubDirs:   true,
	})

# Maps

Embedded level detection for lump archives:

	for _, m := range a.DetectMaps() {
	    // m.Name, m.Format, m.Incomplete
	}

# Saving

Save writes through a temp file and an atomic rename. Unmodified lump
archives rewrite byte-identically; edited ones serialize to the format's
canonical layout:

	if a.Dirty() {
	    if err := a.Save(); err != nil {
	        return err
	    }
	}

# Extracting

Extract a tree to a directory with parallel workers:

	if err := a.Extract(ctx, "out/", arc.ExtractOptions{MaxWorkers: 4}); err != nil {
	    return err
	}
*/
package arc
