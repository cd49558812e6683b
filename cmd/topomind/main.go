// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Command topomind runs the cognitive loop from the terminal: one-shot
// queries, an interactive session, and tool inspection.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch cmd := args[0]; cmd {
	case "query":
		if len(args) < 2 {
			fatal(fmt.Errorf("query requires an utterance argument"))
		}
		runQuery(ctx, global, strings.Join(args[1:], " "))
	case "repl":
		runREPL(ctx, global)
	case "tools":
		runTools(global)
	case "help":
		printUsage()
	case "version":
		fmt.Println("topomind " + version)
	default:
		fatal(fmt.Errorf("unknown command %q", cmd))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	flags.ConfigPath = os.Getenv("TOPOMIND_CONFIG")

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func runQuery(ctx context.Context, global globalFlags, input string) {
	rt, err := buildRuntime(ctx, global.ConfigPath)
	if err != nil {
		fatal(err)
	}
	defer rt.Shutdown(ctx)

	result, err := rt.Query(ctx, input)
	if err != nil {
		fatal(err)
	}
	printResult(global.JSON, resultView(result))
}

func runREPL(ctx context.Context, global globalFlags) {
	rt, err := buildRuntime(ctx, global.ConfigPath)
	if err != nil {
		fatal(err)
	}
	defer rt.Shutdown(ctx)

	fmt.Println("topomind " + version + " (type a query, or \"exit\" to quit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}

		result, err := rt.Query(ctx, input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		printResult(global.JSON, resultView(result))
	}
}

func runTools(global globalFlags) {
	rt, err := buildRuntime(context.Background(), global.ConfigPath)
	if err != nil {
		fatal(err)
	}
	defer rt.Shutdown(context.Background())

	contracts := rt.Registry.List()
	if global.JSON {
		printJSON(contracts)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tCONNECTOR\tDESCRIPTION")
	for _, c := range contracts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Version, c.ConnectorName, c.Description)
	}
	w.Flush()
}

func printResult(asJSON bool, view map[string]any) {
	if asJSON {
		printJSON(view)
		return
	}
	if errMsg, ok := view["error"].(string); ok && errMsg != "" {
		fmt.Printf("[%s] %s: %s\n", view["status"], view["tool"], errMsg)
		return
	}
	fmt.Printf("[%s] %s: %v\n", view["status"], view["tool"], view["output"])
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal(err)
	}
}

func printUsage() {
	fmt.Print(`Usage: topomind [flags] <command>

Commands:
  query <utterance>   run one turn and print the result
  repl                interactive session
  tools               list registered tools
  version             print the version
  help                show this help

Flags:
  --config <path>     YAML config file (or TOPOMIND_CONFIG)
  --json              machine-readable output
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "topomind:", err)
	os.Exit(1)
}
