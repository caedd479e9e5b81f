// Command navtable inspects navigator route tables: it validates layered
// files, lists the routes they define, traces where a route comes from and
// prints the JSON Schema of the file format.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
