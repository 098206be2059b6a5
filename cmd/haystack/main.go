// Command haystack runs the founder scoring pipeline.
package main

import (
	"os"

	"github.com/haystacklabs/haystack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
