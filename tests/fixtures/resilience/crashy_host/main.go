// Command crashy_host is a render host that dies immediately with a non-zero
// exit code, before serving a single operation.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "something went terribly wrong")
	os.Exit(42)
}
