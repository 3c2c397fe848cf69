// Command mockapi runs the simulation and student HTTP services.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var exitFunc = os.Exit

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
		exitFunc(1)
	}
}
