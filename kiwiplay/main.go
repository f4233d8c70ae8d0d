// Kiwiplay loads a patch, prints its DSP chain and optionally plays it.
//
//	kiwiplay [flags] [patch.yaml]
//
// The patch is read from the file, or with -load from the patch library.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/gordonklaus/kiwi"
	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/console"
	"github.com/gordonklaus/kiwi/objects"
	"github.com/gordonklaus/kiwi/patcher"
	"github.com/gordonklaus/kiwi/play"
	"github.com/gordonklaus/kiwi/store"
)

var (
	configPath = flag.String("config", "", "YAML file configuring the audio stream")
	dbPath     = flag.String("db", "kiwi.db", "patch library")
	loadName   = flag.String("load", "", "load the named patch from the library")
	saveName   = flag.String("save", "", "save the patch to the library under this name")
	list       = flag.Bool("list", false, "list the patches in the library and exit")
	playFor    = flag.Duration("play", 0, "play for this long; negative plays until interrupted")
	verbose    = flag.Bool("v", false, "log debug messages")
)

func main() {
	flag.Parse()
	if err := run(flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(w *os.File, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func run(args []string, out io.Writer) error {
	logger := newLogger(os.Stderr, *verbose)

	var lib *store.Store
	if *list || *loadName != "" || *saveName != "" {
		var err error
		if lib, err = store.Open(*dbPath); err != nil {
			return err
		}
		defer lib.Close()
	}
	if *list {
		names, err := lib.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	d, err := readPatch(args, lib)
	if err != nil {
		return err
	}

	f := patcher.NewFactory()
	if err := objects.Register(f); err != nil {
		return err
	}
	x := kiwi.New("kiwiplay", f, console.New(logger))
	defer x.Close()

	p, err := x.CreatePatcher(d)
	if err != nil {
		logger.Warn("patch loaded with errors", "objects", p.Len())
	}
	if *saveName != "" {
		if err := lib.Save(*saveName, p.Write()); err != nil {
			return err
		}
	}
	printChain(out, p)

	if *playFor == 0 {
		return nil
	}
	cfg := play.DefaultConfig
	if *configPath != "" {
		if cfg, err = play.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if err := x.StartDSP(cfg.Params()); err != nil {
		logger.Warn("playing a partial chain", "err", err)
	}
	defer x.StopDSP()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *playFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *playFor)
		defer cancel()
	}
	start := time.Now()
	err = play.Run(ctx, x.DSP(), cfg)
	logger.Debug("stopped playing", "after", time.Since(start))
	return err
}

// readPatch returns the patch to play, in the form CreatePatcher expects.
func readPatch(args []string, lib *store.Store) (atom.Dict, error) {
	var d atom.Dict
	switch {
	case *loadName != "":
		var err error
		if d, err = lib.Load(*loadName); err != nil {
			return nil, err
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		if d, err = atom.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("%s: %w", args[0], err)
		}
	default:
		return nil, errors.New("usage: kiwiplay [flags] [patch.yaml]")
	}
	if _, ok := d[atom.Patcher]; !ok {
		d = atom.Dict{atom.Patcher: d}
	}
	return d, nil
}

func printChain(w io.Writer, p *patcher.Patcher) {
	prog := p.Program()
	for i, n := range prog.Nodes() {
		fmt.Fprintf(w, "%3d  %v\n", i, n)
	}
	for _, n := range prog.Excluded() {
		fmt.Fprintf(w, "  -  %v (cycle)\n", n)
	}
}
