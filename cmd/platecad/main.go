// cmd/platecad/main.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// platecad is a command-line tool for inspecting, checking, and converting
// scene files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/platecad/platecad/log"
)

var (
	logLevel   = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir     = flag.String("logdir", "", "log file directory")
	configFile = flag.String("config", "", "configuration file (default: platecad/config.json in the user config directory)")
	dryRun     = flag.Bool("n", false, "don't write anything; report what would be written")
	nWorkers   = flag.Int("nworkers", 8, "number of scenes to check concurrently")
)

// cli holds what the commands need to run.
type cli struct {
	config     *Config
	configPath string
	lg         *log.Logger
	w          io.Writer
	dryRun     bool
	nWorkers   int
}

type command struct {
	args    string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"info": {args: "<scene>...", help: "print a summary of each scene",
		minArgs: 1, maxArgs: -1, run: runInfo},
	"lint": {args: "<scene>...", help: "check scenes, reporting every problem found",
		minArgs: 1, maxArgs: -1, run: runLint},
	"convert": {args: "<src> <dst>", help: "copy a scene, converting formats by extension; dst may be - for stdout",
		minArgs: 2, maxArgs: 2, run: runConvert},
	"dump": {args: "<scene>", help: "dump the scene's data structures",
		minArgs: 1, maxArgs: 1, run: runDump},
	"project": {args: "<scene> <x> <y> <z>", help: "print where a world-space point appears in the window",
		minArgs: 4, maxArgs: 4, run: runProject},
	"rotate": {args: "<src> <dst> <axis>[:count]...", help: "rotate the view of a scene (axes X+, X-, Y+, Y-, Z+, Z-) and save it",
		minArgs: 3, maxArgs: -1, run: runRotate},
	"draw": {args: "<scene>", help: "record a draw pass of the scene and report what it drew",
		minArgs: 1, maxArgs: 1, run: runDraw},
	"ls": {args: "<location>", help: "list the objects at a storage location",
		minArgs: 1, maxArgs: 1, run: runList},
	"config": {args: "[init]", help: "print the configuration, or write it to the config file with init",
		minArgs: 0, maxArgs: 1, run: runConfig},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: platecad [flags] <command> [args]\nwhere <command> is one of:\n")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		cmd := commands[name]
		fmt.Fprintf(os.Stderr, "  %s %s\n    \t%s\n", name, cmd.args, cmd.help)
	}
	fmt.Fprintf(os.Stderr, "and [flags] may be:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Initialize the logging system first and foremost.
	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	name := strings.ToLower(args[0])
	cmd, ok := commands[name]
	nargs := len(args) - 1
	if !ok || nargs < cmd.minArgs || (cmd.maxArgs >= 0 && nargs > cmd.maxArgs) {
		usage()
		os.Exit(1)
	}

	path := *configFile
	if path == "" {
		path = configFilePath(lg)
	}
	config, err := LoadOrMakeDefaultConfig(path, lg)
	if err != nil {
		// Keep going with the defaults.
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "platecad: %v\n", err)
	}

	c := &cli{
		config:     config,
		configPath: path,
		lg:         lg,
		w:          os.Stdout,
		dryRun:     *dryRun,
		nWorkers:   *nWorkers,
	}
	if err := cmd.run(context.Background(), c, args[1:]); err != nil {
		lg.Errorf("%s: %v", name, err)
		fmt.Fprintf(os.Stderr, "platecad %s: %v\n", name, err)
		os.Exit(1)
	}
}
