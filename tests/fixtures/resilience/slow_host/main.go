// Command slow_host is a render host that notices the shutdown EOF but takes
// far longer than the grace period to exit. The parent runtime must kill it.
package main

import (
	"fmt"
	"io"
	"os"
	"time"
)

func main() {
	fmt.Fprintln(os.Stderr, "slow host started")

	// Drain stdin until the parent closes it
	_, _ = io.Copy(io.Discard, os.Stdin)

	fmt.Fprintln(os.Stderr, "shutdown noticed, but I am too busy sleeping")
	time.Sleep(30 * time.Second)
	fmt.Fprintln(os.Stderr, "done now (too late)")
}
