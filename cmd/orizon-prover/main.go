// Package main provides the entry point for the Orizon proof search tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/orizon-lang/orizon-prover/internal/search"
	"github.com/orizon-lang/orizon-prover/internal/term"
)

var (
	version = "0.1.0-alpha"
	commit  = "dev"
)

type demoGoal struct {
	name string
	goal search.Goal
}

// demoGoals are the built-in example sequents exercised by the tool.
func demoGoals() []demoGoal {
	a := term.MkConst("A")
	b := term.MkConst("B")
	h := term.MkLocal("l.h", "h", a)
	return []demoGoal{
		{
			name: "assumption",
			goal: search.Goal{Hyps: []*term.Expr{h}, Target: a},
		},
		{
			name: "identity",
			goal: search.Goal{Target: term.MkPi("x", a, a, term.BinderDefault)},
		},
		{
			name: "const",
			goal: search.Goal{Target: term.MkPi("x", a,
				term.MkPi("y", b, a, term.BinderDefault), term.BinderDefault)},
		},
		{
			name: "unprovable",
			goal: search.Goal{Hyps: []*term.Expr{h}, Target: b},
		},
	}
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		maxDepth    = flag.Int("max-depth", search.DefaultMaxDepth, "maximum search depth")
		initDepth   = flag.Int("init-depth", search.DefaultInitDepth, "initial search depth")
		incDepth    = flag.Int("inc-depth", search.DefaultIncDepth, "depth increment per deepening round")
		verbose     = flag.Bool("verbose", false, "enable search trace output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("Orizon Prover v%s (%s)\n", version, commit)
		return
	}

	if *showHelp {
		showUsage()
		return
	}

	cfg := search.Config{
		MaxDepth:  *maxDepth,
		InitDepth: *initDepth,
		IncDepth:  *incDepth,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts []search.Option
	if *verbose {
		log := logrus.New()
		log.SetLevel(logrus.DebugLevel)
		opts = append(opts, search.WithLogger(log))
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg search.Config, opts []search.Option) error {
	demos := demoGoals()
	goals := make([]search.Goal, len(demos))
	for i, d := range demos {
		goals[i] = d.goal
	}

	results, err := search.ProveAll(context.Background(), cfg, search.NopNormalizer{}, goals, opts...)
	if err != nil {
		return err
	}

	for i, d := range demos {
		if results[i].Ok {
			fmt.Printf("%-12s proved: %s\n", d.name, results[i].Proof)
		} else {
			fmt.Printf("%-12s no proof within depth %d\n", d.name, cfg.MaxDepth)
		}
	}
	return nil
}

func showUsage() {
	fmt.Println("Orizon Prover - automated proof search")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("    orizon-prover [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("    --version     Show version information")
	fmt.Println("    --help        Show this help message")
	fmt.Println("    --max-depth   Maximum search depth")
	fmt.Println("    --init-depth  Initial search depth")
	fmt.Println("    --inc-depth   Depth increment per deepening round")
	fmt.Println("    --verbose     Enable search trace output")
	fmt.Println()
	fmt.Println("Runs the built-in example goals and prints the proof found for each.")
}
