// cmd/platecad/commands.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goforj/godump"
	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/persist"
	"github.com/platecad/platecad/render"
	"github.com/platecad/platecad/store"
	"github.com/platecad/platecad/util"
	"golang.org/x/sync/errgroup"
)

func (c *cli) openDocument(ctx context.Context, loc string) (*persist.Document, error) {
	doc := persist.NewDocument(c.lg)
	if err := doc.Open(ctx, loc); err != nil {
		return nil, err
	}
	return doc, nil
}

func formatName(loc string) string {
	if persist.IsSnapshot(loc) {
		return "snapshot"
	}
	return "text"
}

func runInfo(ctx context.Context, c *cli, args []string) error {
	for _, loc := range args {
		doc, err := c.openDocument(ctx, loc)
		if err != nil {
			return err
		}
		sc := doc.Scene
		fmt.Fprintf(c.w, "%s (%s format)\n", loc, formatName(loc))
		fmt.Fprintf(c.w, "    %s\n", sc)
		fmt.Fprintf(c.w, "    %d arena points\n", len(sc.Points))
		fmt.Fprintf(c.w, "    origin %s\n", sc.Origin)
		for i, b := range sc.DisplayBasis {
			fmt.Fprintf(c.w, "    display basis %d: (%.4f, %.4f, %.4f)\n", i, b[0], b[1], b[2])
		}
	}
	return nil
}

// lintResult is what checking a single scene found.
type lintResult struct {
	loc     string
	e       util.ErrorLogger
	summary string
}

func runLint(ctx context.Context, c *cli, args []string) error {
	results := make([]lintResult, len(args))

	var eg errgroup.Group
	eg.SetLimit(max(1, c.nWorkers))
	for i, loc := range args {
		eg.Go(func() error {
			results[i] = c.lintOne(ctx, loc)
			return nil
		})
	}
	eg.Wait()

	nfailed := 0
	for _, r := range results {
		if r.e.HaveErrors() {
			nfailed++
			fmt.Fprintf(c.w, "%s: FAILED\n", r.loc)
		} else {
			fmt.Fprintf(c.w, "%s: ok (%s)\n", r.loc, r.summary)
		}
		r.e.PrintErrors(c.w, c.lg)
	}

	if nfailed > 0 {
		return fmt.Errorf("%d of %d scenes had errors", nfailed, len(args))
	}
	return nil
}

func (c *cli) lintOne(ctx context.Context, loc string) lintResult {
	r := lintResult{loc: loc}
	r.e.Push(loc)
	defer r.e.Pop()

	b, path, err := store.Open(ctx, loc)
	if err != nil {
		r.e.Error(err)
		return r
	}
	// Both the lint pass and the full decode read the object; the second
	// read is served from memory.
	cb := store.NewCachingBackend(b, c.config.CacheSize, c.config.CacheTTL())
	defer cb.Close()

	if !persist.IsSnapshot(path) {
		rd, err := cb.OpenRead(ctx, path)
		if err != nil {
			r.e.Error(err)
			return r
		}
		err = persist.Lint(rd, &r.e)
		rd.Close()
		if err != nil {
			r.e.Error(err)
		}
		if r.e.HaveErrors() {
			return r
		}
	}

	doc := persist.NewDocument(c.lg)
	doc.Backend = cb
	if err := doc.Open(ctx, path); err != nil {
		r.e.Error(err)
		return r
	}
	r.summary = doc.Scene.String()
	return r
}

func runConvert(ctx context.Context, c *cli, args []string) error {
	src, dst := args[0], args[1]
	doc, err := c.openDocument(ctx, src)
	if err != nil {
		return err
	}

	if dst == "-" {
		cw := &store.CountingWriter{Writer: c.w}
		if err := persist.Encode(cw, doc.Scene, ""); err != nil {
			return err
		}
		c.lg.Infof("%s: wrote %d bytes to stdout", src, cw.N)
		return nil
	}

	return c.save(ctx, doc, dst)
}

// save writes doc to dst, honoring the dry run flag, and records dst as a
// recently used scene.
func (c *cli) save(ctx context.Context, doc *persist.Document, dst string) error {
	if c.dryRun {
		b, path, err := store.Open(ctx, dst)
		if err != nil {
			return err
		}
		defer b.Close()

		var buf bytes.Buffer
		if err := persist.Encode(&buf, doc.Scene, path); err != nil {
			return err
		}
		n, err := store.DryRunBackend{B: b}.Store(ctx, path, &buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.w, "%s: would write %d bytes\n", dst, n)
		return nil
	}

	if err := doc.SaveAs(ctx, dst); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "%s: %s\n", dst, doc.Scene)

	c.config.AddRecent(dst)
	if c.configPath != "" {
		if err := c.config.Save(c.configPath, c.lg); err != nil {
			c.lg.Warnf("%s: unable to save config: %v", c.configPath, err)
		}
	}
	return nil
}

func runDump(ctx context.Context, c *cli, args []string) error {
	doc, err := c.openDocument(ctx, args[0])
	if err != nil {
		return err
	}
	godump.Fdump(c.w, doc.Scene)
	return nil
}

func runProject(ctx context.Context, c *cli, args []string) error {
	var v math.Vector3
	for i, s := range args[1:] {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		v[i] = f
	}

	doc, err := c.openDocument(ctx, args[0])
	if err != nil {
		return err
	}
	sc, vp := doc.Scene, c.config.Editor.Viewport

	s := vp.ToScreen(sc, v)
	dist := sc.DistanceToPlane(v)
	fmt.Fprintf(c.w, "window (%d, %d)\n", s[0], s[1])
	fmt.Fprintf(c.w, "depth %.4f\n", sc.Project(v)[2])
	fmt.Fprintf(c.w, "distance to plate %.4f\n", dist)
	fmt.Fprintf(c.w, "visible %v\n", dist >= 0)
	return nil
}

// primitiveCounter is a render.Surface that counts the primitives drawn
// to it.
type primitiveCounter struct {
	lines, ellipses, triangles int
}

func (p *primitiveCounter) DrawLine(p0, p1 [2]float64, color render.RGB, width float64) {
	p.lines++
}

func (p *primitiveCounter) DrawEllipse(center [2]float64, rx, ry float64, color render.RGB, width float64, filled bool) {
	p.ellipses++
}

func (p *primitiveCounter) FillTriangles(tris [][3][2]float64, color render.RGB) {
	p.triangles += len(tris)
}

func runDraw(ctx context.Context, c *cli, args []string) error {
	doc, err := c.openDocument(ctx, args[0])
	if err != nil {
		return err
	}

	cb := render.GetCommandBuffer()
	defer render.ReturnCommandBuffer(cb)

	d := render.NewDrawer(c.config.Editor.Render, c.lg)
	stats := d.Draw(cb, doc.Scene, c.config.Editor.Viewport)

	var pc primitiveCounter
	if err := cb.Replay(&pc); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "%s\n", stats)
	fmt.Fprintf(c.w, "%d lines, %d ellipses, %d triangles in %d command words\n",
		pc.lines, pc.ellipses, pc.triangles, len(cb.Buf))
	return nil
}

// parseRotation parses a rotation of the form axis[:count].
func parseRotation(s string) (math.Axis, int, error) {
	as, cs, ok := strings.Cut(s, ":")
	a, err := math.ParseAxis(as)
	if err != nil {
		return 0, 0, err
	}
	n := 1
	if ok {
		if n, err = strconv.Atoi(cs); err != nil {
			return 0, 0, fmt.Errorf("%s: invalid rotation count: %w", s, err)
		} else if n < 0 {
			return 0, 0, fmt.Errorf("%s: negative rotation count", s)
		}
	}
	return a, n, nil
}

func runRotate(ctx context.Context, c *cli, args []string) error {
	src, dst := args[0], args[1]

	type rotation struct {
		axis  math.Axis
		count int
	}
	var rots []rotation
	for _, s := range args[2:] {
		a, n, err := parseRotation(s)
		if err != nil {
			return err
		}
		rots = append(rots, rotation{a, n})
	}

	doc, err := c.openDocument(ctx, src)
	if err != nil {
		return err
	}

	ops := math.MakeRotationOperators(math.Radians(c.config.Editor.RotationStep))
	for _, r := range rots {
		for range r.count {
			doc.Scene.RotateAxis(r.axis, &ops)
		}
		c.lg.Debugf("rotated %s %d times", r.axis, r.count)
	}

	return c.save(ctx, doc, dst)
}

func runList(ctx context.Context, c *cli, args []string) error {
	b, prefix, err := store.Open(ctx, args[0])
	if err != nil {
		return err
	}
	defer b.Close()

	objs, err := b.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(objs)) {
		fmt.Fprintf(c.w, "%10d %s\n", objs[name], name)
	}
	return nil
}

var errUnknownConfigAction = errors.New("unknown config action")

func runConfig(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		return c.config.Encode(c.w)
	}
	if args[0] != "init" {
		return fmt.Errorf("%s: %w", args[0], errUnknownConfigAction)
	}
	if err := c.config.Save(c.configPath, c.lg); err != nil {
		return err
	}
	fmt.Fprintf(c.w, "wrote %s\n", c.configPath)
	return nil
}
