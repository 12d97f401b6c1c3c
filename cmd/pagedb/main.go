// Command pagedb is a flag-driven front end for the B+-tree storage
// engine: insert, select, and delete rows in a single page file, plus a
// couple of diagnostic dumps. There is no REPL and no line-based command
// language — each invocation does one thing and exits, the way a Unix
// tool composes with a shell rather than a database client.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	recstore "github.com/cranked/recstore"
	"github.com/cranked/recstore/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pagedb:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pagedb", flag.ExitOnError)
	dbPath := fs.String("db", "data.db", "path to the page file")
	configPath := fs.String("config", "", "optional YAML config file (overrides -db's default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: pagedb -db FILE {insert ID USERNAME EMAIL | select | delete ID | count | constants | dumptree}")
	}

	// LoadConfig returns its defaults (including log_instance_tag: true)
	// when configPath doesn't exist, so this applies whether or not
	// -config was given at all.
	cfg, err := recstore.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if wasSet(fs, "db") {
		cfg.Path = *dbPath
	}

	table, err := storage.Open(cfg.Path, storage.Options{
		MaxLoadedPages: cfg.MaxLoadedPages,
		Logger:         log.Default(),
		LogInstanceTag: cfg.LogInstanceTag,
	})
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.Path, err)
	}
	defer table.Close()

	if cfg.MaintenanceCron != "" {
		m, err := storage.NewMaintenance(table, cfg.MaintenanceCron, log.Default())
		if err != nil {
			return fmt.Errorf("starting maintenance schedule %q: %w", cfg.MaintenanceCron, err)
		}
		m.Start()
		defer m.Stop()
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "insert":
		return runInsert(table, cmdArgs)
	case "select":
		return runSelect(table)
	case "delete":
		return runDelete(table, cmdArgs)
	case "count":
		fmt.Println(table.Count())
		return nil
	case "constants":
		return runConstants(table)
	case "dumptree":
		return table.DumpTree(os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func wasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func runInsert(table *storage.Table, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: pagedb -db FILE insert ID USERNAME EMAIL")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return table.Insert(id, args[1], args[2])
}

func runSelect(table *storage.Table) error {
	for _, rec := range table.Select() {
		fmt.Printf("(%d, %s, %s)\n", rec.ID, rec.Username, rec.Email)
	}
	return nil
}

func runDelete(table *storage.Table, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pagedb -db FILE delete ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return table.Delete(id)
}

func runConstants(table *storage.Table) error {
	c := table.Constants()
	fmt.Printf("RowSize: %d\n", c.RowSize)
	fmt.Printf("CommonNodeHeaderSize: %d\n", c.CommonNodeHeaderSize)
	fmt.Printf("LeafNodeHeaderSize: %d\n", c.LeafNodeHeaderSize)
	fmt.Printf("LeafNodeCellSize: %d\n", c.LeafNodeCellSize)
	fmt.Printf("LeafNodeSpaceForCells: %d\n", c.LeafNodeSpaceForCells)
	fmt.Printf("LeafNodeMaxCells: %d\n", c.LeafNodeMaxCells)
	fmt.Printf("LeafNodeLeftSplitCount: %d\n", c.LeafNodeLeftSplitCount)
	fmt.Printf("LeafNodeRightSplitCount: %d\n", c.LeafNodeRightSplitCount)
	fmt.Printf("InternalNodeHeaderSize: %d\n", c.InternalNodeHeaderSize)
	fmt.Printf("InternalNodeCellSize: %d\n", c.InternalNodeCellSize)
	fmt.Printf("InternalNodeMaxCells: %d\n", c.InternalNodeMaxCells)
	return nil
}
