package app

import (
	"fmt"
	"io"
)

// ProcessCommandLineArgs handles the only arguments the demo understands,
// --help and -h. It reports whether the program should exit instead of
// rendering; unknown arguments also print usage and exit.
func ProcessCommandLineArgs(args []string, out io.Writer) (exit bool) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage(out)
			return true
		}

		fmt.Fprintf(out, "\nUnrecognized option: %s\n", arg)
		fmt.Fprintln(out, "\nUse --help or -h for option list.")
		return true
	}

	return false
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, "\n%s\n", WindowTitle)
	fmt.Fprintf(out, "\tDraws two triangles in a %dx%d window until it is closed or Escape is pressed.\n", WindowWidth, WindowHeight)
	fmt.Fprintln(out, "\tTakes no options.")
}
