// Command plateform develops surfaces into forming sheets and writes the
// toolpath, drawings and meshes of each run.
//
// Usage:
//
//	plateform [flags] [config.yaml|config.toml ...]
//
// Without arguments the default cylinder is developed. Each
// configuration file is an independent job and jobs run concurrently.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/soypat/plate"
	"github.com/soypat/plate/config"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		outDir  = flag.String("o", ".", "output directory")
		mode    = flag.String("mode", "", "override run mode: develop or project")
		level   = flag.String("log", "", "override log level: debug, info, warn or error")
		jobs    = flag.Int("j", runtime.NumCPU(), "maximum concurrent jobs")
		quiet   = flag.Bool("q", false, "do not print run reports")
		noFiles = flag.Bool("n", false, "run without writing artifacts")
	)
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("plateform: ")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{""}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	reports := make([]string, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			cfg, err := load(path, config.Mode(*mode), *level)
			if err != nil {
				return err
			}
			s, err := plate.NewSession(cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", name(path), err)
			}
			s.Log = plate.NewLogger(os.Stderr, cfg.Log.Level).With("job", name(path))
			res, err := s.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", name(path), err)
			}
			if !*noFiles {
				prefix := filepath.Join(*outDir, cfg.Output)
				if len(paths) > 1 || cfg.Output == "" {
					prefix = filepath.Join(*outDir, name(path))
				}
				if err := s.Save(ctx, res, plate.NewArtifacts(prefix)); err != nil {
					return fmt.Errorf("%s: %w", name(path), err)
				}
			}
			reports[i] = s.Report(res)
			return nil
		})
	}
	err := g.Wait()
	if !*quiet {
		for _, r := range reports {
			if r != "" {
				fmt.Println(r)
			}
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

// load reads the configuration at path, or the defaults when path is
// empty, and applies command line overrides.
func load(path string, mode config.Mode, level string) (cfg config.Config, err error) {
	if path == "" {
		cfg = config.Defaults(mode)
	} else if cfg, err = config.Load(path); err != nil {
		return cfg, err
	}
	if mode != "" && mode != cfg.Mode {
		// Switching modes switches the mode defaults too.
		d := config.Defaults(mode)
		cfg.Mode, cfg.Sheet.Weld, cfg.Sample = mode, d.Sheet.Weld, d.Sample
	}
	if level != "" {
		cfg.Log.Level = level
	}
	return cfg, cfg.Validate()
}

func name(path string) string {
	if path == "" {
		return "plate"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
