// Package main provides the nodegraph CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/scinode/nodegraph/internal/adapters/repository/sqlite"
	"github.com/scinode/nodegraph/internal/app/dto"
	"github.com/scinode/nodegraph/internal/app/usecases"
	"github.com/scinode/nodegraph/internal/core/graph"
	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/core/spec"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usageText = `nodegraph - task graph definition and analysis

Usage:
  nodegraph version                     print version information
  nodegraph hash <spec.json>            print the structural hash of a spec
  nodegraph diff <a.json> <b.json>      compare two graph dumps
  nodegraph specs --db <path> [--identifier <id>]
                                        list spec records in a SQLite store
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "nodegraph: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usageText)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "nodegraph %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return nil
	case "hash":
		if len(args) != 2 {
			return fmt.Errorf("usage: nodegraph hash <spec.json>")
		}
		return runHash(args[1], out)
	case "diff":
		if len(args) != 3 {
			return fmt.Errorf("usage: nodegraph diff <a.json> <b.json>")
		}
		return runDiff(args[1], args[2], out)
	case "specs":
		return runSpecs(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runHash(path string, out io.Writer) error {
	d, err := readDict(path)
	if err != nil {
		return err
	}
	sp, err := spec.FromDict(d, nil)
	if err != nil {
		return err
	}
	hash, err := sp.Hash()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s  %s\n", hash, sp.Identifier)
	return nil
}

func runDiff(pathA, pathB string, out io.Writer) error {
	a, err := loadSnapshot(pathA)
	if err != nil {
		return err
	}
	b, err := loadSnapshot(pathB)
	if err != nil {
		return err
	}
	res, err := usecases.Diff(a, b)
	if err != nil {
		return err
	}

	printSet := func(label string, names []string) {
		fmt.Fprintf(out, "%s (%d):", label, len(names))
		for _, n := range names {
			fmt.Fprintf(out, " %s", n)
		}
		fmt.Fprintln(out)
	}
	printSet("added", res.AddedNodes)
	printSet("removed", res.RemovedNodes)
	printSet("modified", res.ModifiedNodes)
	printSet("metadata changed", res.MetadataChanged)
	return nil
}

func runSpecs(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("specs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dbPath := fs.String("db", "", "path to the SQLite spec store")
	identifier := fs.String("identifier", "", "filter by spec identifier")
	limit := fs.Int("limit", 0, "maximum number of records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("usage: nodegraph specs --db <path> [--identifier <id>]")
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, *dbPath, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(ctx, record.Filter{Identifier: *identifier, Limit: *limit})
	if err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Fprintf(out, "%-30s %-12s %s  %s\n",
			rec.Identifier, rec.Version, rec.Hash[:12], rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "%d record(s)\n", len(recs))
	return nil
}

func readDict(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d map[string]any
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// loadSnapshot reads a graph dump and reduces it to the analysis snapshot.
// Only embedded-schema specs load without a registry; handle and callable
// backed dumps need the library API instead.
func loadSnapshot(path string) (*dto.GraphSnapshot, error) {
	d, err := readDict(path)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromDict(d, nil)
	if err != nil {
		return nil, err
	}
	return dto.SnapshotOf(g), nil
}
