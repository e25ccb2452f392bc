// cmd/platecad/commands_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/persist"
	"github.com/platecad/platecad/scene"
)

func makeCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &cli{
		config:     getDefaultConfig(),
		configPath: filepath.Join(t.TempDir(), "config.json"),
		w:          &buf,
		nWorkers:   2,
	}, &buf
}

// writeScene saves a small scene to a new file with the given name and
// returns its path.
func writeScene(t *testing.T, name string) string {
	t.Helper()
	sc := scene.New()
	a := sc.AddPoint(math.Vector3{0, 0, 0}, scene.Red)
	b := sc.NewPoint(math.Vector3{0, 10, 20}, scene.Green, scene.DefaultPointWidth)
	sc.AddLine(a, b, scene.Black)
	sc.AddEllipse(a, b, scene.Blue)

	fn := filepath.Join(t.TempDir(), name)
	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := persist.Encode(f, sc, fn); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestInfo(t *testing.T) {
	c, out := makeCLI(t)
	fn := writeScene(t, "scene.txt")
	if err := runInfo(context.Background(), c, []string{fn}); err != nil {
		t.Fatalf("info: %v", err)
	}
	// Text files embed every point reference, so each one gets its own
	// arena point on reload.
	for _, s := range []string{"text format", "1 points, 1 lines, 0 places, 1 ellipses", "5 arena points"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output doesn't include %q:\n%s", s, out.String())
		}
	}

	// Snapshots keep shared points shared.
	out.Reset()
	if err := runInfo(context.Background(), c, []string{writeScene(t, "scene"+persist.SnapshotExtension)}); err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, s := range []string{"snapshot format", "2 arena points"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output doesn't include %q:\n%s", s, out.String())
		}
	}

	if err := runInfo(context.Background(), c, []string{filepath.Join(t.TempDir(), "missing.txt")}); !errors.Is(err, persist.ErrIO) {
		t.Errorf("expected an I/O error for a missing scene, got %v", err)
	}
}

func TestLint(t *testing.T) {
	good := writeScene(t, "good.txt")
	snap := writeScene(t, "good"+persist.SnapshotExtension)
	bad := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(bad, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out := makeCLI(t)
	if err := runLint(context.Background(), c, []string{good, snap}); err != nil {
		t.Errorf("unexpected lint failure: %v\n%s", err, out.String())
	}
	if n := strings.Count(out.String(), ": ok ("); n != 2 {
		t.Errorf("got %d ok scenes, expected 2:\n%s", n, out.String())
	}

	c, out = makeCLI(t)
	if err := runLint(context.Background(), c, []string{good, bad}); err == nil {
		t.Errorf("expected an error when a scene is bad")
	}
	lines := strings.Split(out.String(), "\n")
	if !strings.HasPrefix(lines[0], good+": ok") {
		t.Errorf("results aren't in argument order:\n%s", out.String())
	}
	if !strings.Contains(out.String(), bad+": FAILED") || !strings.Contains(out.String(), bad+" / line 1: ") {
		t.Errorf("bad scene wasn't reported with its location:\n%s", out.String())
	}
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	src := writeScene(t, "scene.txt")
	dst := filepath.Join(t.TempDir(), "scene"+persist.SnapshotExtension)

	t.Run("DryRun", func(t *testing.T) {
		c, out := makeCLI(t)
		c.dryRun = true
		if err := runConvert(ctx, c, []string{src, dst}); err != nil {
			t.Fatalf("convert: %v", err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Errorf("dry run wrote %s", dst)
		}
		if !strings.Contains(out.String(), "would write") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		c, _ := makeCLI(t)
		if err := runConvert(ctx, c, []string{src, dst}); err != nil {
			t.Fatalf("convert: %v", err)
		}
		doc, err := c.openDocument(ctx, dst)
		if err != nil {
			t.Fatalf("open converted scene: %v", err)
		}
		if s := doc.Scene.String(); s != "1 points, 1 lines, 0 places, 1 ellipses" {
			t.Errorf("converted scene has %s", s)
		}
		if len(c.config.RecentFiles) != 1 || c.config.RecentFiles[0] != dst {
			t.Errorf("destination wasn't recorded as recent: %v", c.config.RecentFiles)
		}
		if _, err := os.Stat(c.configPath); err != nil {
			t.Errorf("config wasn't saved: %v", err)
		}
	})

	t.Run("Stdout", func(t *testing.T) {
		c, out := makeCLI(t)
		if err := runConvert(ctx, c, []string{dst, "-"}); err != nil {
			t.Fatalf("convert: %v", err)
		}
		sc, err := persist.Open(out)
		if err != nil {
			t.Fatalf("stdout isn't a text scene: %v", err)
		}
		if len(sc.Entities) != 3 {
			t.Errorf("got %d entities, expected 3", len(sc.Entities))
		}
	})
}

func TestProject(t *testing.T) {
	c, out := makeCLI(t)
	fn := writeScene(t, "scene.txt")
	if err := runProject(context.Background(), c, []string{fn, "3", "20", "10"}); err != nil {
		t.Fatalf("project: %v", err)
	}
	expected := "window (650, 380)\ndepth 3.0000\ndistance to plate 3.0000\nvisible true\n"
	if out.String() != expected {
		t.Errorf("got %q, expected %q", out.String(), expected)
	}

	if err := runProject(context.Background(), c, []string{fn, "3", "x", "10"}); err == nil {
		t.Errorf("expected an error for a bad coordinate")
	}
}

func TestDraw(t *testing.T) {
	c, out := makeCLI(t)
	fn := writeScene(t, "scene.txt")
	if err := runDraw(context.Background(), c, []string{fn}); err != nil {
		t.Fatalf("draw: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines of output, expected 2:\n%s", len(lines), out.String())
	}
	if lines[0] != "points 1 lines 1 places 0 ellipses 1 skipped 0" {
		t.Errorf("unexpected stats %q", lines[0])
	}
	// Three gizmo axes and the scene's line.
	if !strings.HasPrefix(lines[1], "4 lines, ") || !strings.Contains(lines[1], " 0 triangles in ") {
		t.Errorf("unexpected primitive counts %q", lines[1])
	}
}

func TestParseRotation(t *testing.T) {
	for _, test := range []struct {
		s     string
		axis  math.Axis
		count int
		err   bool
	}{
		{s: "x+", axis: math.XPlus, count: 1},
		{s: "Z-:10", axis: math.ZMinus, count: 10},
		{s: "Y+:0", axis: math.YPlus, count: 0},
		{s: "W+", err: true},
		{s: "X+:many", err: true},
		{s: "X+:-2", err: true},
	} {
		a, n, err := parseRotation(test.s)
		if test.err {
			if err == nil {
				t.Errorf("%s: expected an error", test.s)
			}
			continue
		}
		if err != nil || a != test.axis || n != test.count {
			t.Errorf("%s: got %v %d %v, expected %v %d", test.s, a, n, err, test.axis, test.count)
		}
	}
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	c, _ := makeCLI(t)
	src := writeScene(t, "scene.txt")
	dst := filepath.Join(t.TempDir(), "rotated.txt")

	if err := runRotate(ctx, c, []string{src, dst, "X+:45", "Y-"}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	doc, err := c.openDocument(ctx, dst)
	if err != nil {
		t.Fatalf("open rotated scene: %v", err)
	}

	expected := scene.New()
	ops := math.MakeRotationOperators(math.Radians(c.config.Editor.RotationStep))
	for range 45 {
		expected.RotateAxis(math.XPlus, &ops)
	}
	expected.RotateAxis(math.YMinus, &ops)
	for i := range expected.DisplayBasis {
		if !math.ApproxEqual(doc.Scene.DisplayBasis[i], expected.DisplayBasis[i], 1e-9) {
			t.Errorf("basis %d: got %v, expected %v", i, doc.Scene.DisplayBasis[i], expected.DisplayBasis[i])
		}
	}

	if err := runRotate(ctx, c, []string{src, dst, "Q"}); err == nil {
		t.Errorf("expected an error for a bad axis")
	}
}

func TestList(t *testing.T) {
	c, out := makeCLI(t)
	fn := writeScene(t, "scene.txt")
	if err := runList(context.Background(), c, []string{filepath.Dir(fn)}); err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), fn) {
		t.Errorf("listing doesn't include %s:\n%s", fn, out.String())
	}
}

func TestConfigCommand(t *testing.T) {
	c, out := makeCLI(t)
	if err := runConfig(context.Background(), c, nil); err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out.String(), `"CacheSize": 32`) {
		t.Errorf("unexpected config output:\n%s", out.String())
	}

	if err := runConfig(context.Background(), c, []string{"init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(c.configPath); err != nil {
		t.Errorf("config file wasn't written: %v", err)
	}
	if err := runConfig(context.Background(), c, []string{"frob"}); !errors.Is(err, errUnknownConfigAction) {
		t.Errorf("got %v, expected errUnknownConfigAction", err)
	}
}
