// The main package for the exhibitor-scraper executable.
package main

import (
	"github.com/JakeFAU/exhibitor-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
