// taps filters data items by size and hands the kept ones to a transformer.
package main

import (
	"os"

	"github.com/hupe1980/taps/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
