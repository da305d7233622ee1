// Command stacker deploys Docker Compose applications from templated
// compose files and layered values sources.
package main

import (
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitConfigError = 3
)

const usage = `Usage: stacker <command> [flags]

Commands:
  up       Render, validate, and start an application
  down     Stop an application and remove its containers
  status   Show container status for an application
  render   Render a compose template and print the result
  values   Load, merge, and resolve values sources and print them
  list     List registered applications
  version  Print version information

Run 'stacker <command> -h' for command flags.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return ExitUsage
	}

	command, rest := args[0], args[1:]

	switch command {
	case "version":
		fmt.Printf("stacker %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	case "-h", "--help", "help":
		fmt.Print(usage)
		return ExitSuccess
	case "up":
		return cmdUp(rest)
	case "down":
		return cmdDown(rest)
	case "status":
		return cmdStatus(rest)
	case "render":
		return cmdRender(rest)
	case "values":
		return cmdValues(rest)
	case "list":
		return cmdList(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		return ExitUsage
	}
}
