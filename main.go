// The main package for the facrcrawl executable.
package main

import (
	"github.com/mhrabal/facrcrawl/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
