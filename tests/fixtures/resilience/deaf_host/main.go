// Command deaf_host is a render host that never reads its stdin, so it does
// not notice the shutdown EOF. The parent runtime must kill it after the
// grace period.
package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	fmt.Fprintln(os.Stderr, "deaf host started")

	// Block forever without touching stdin
	for {
		time.Sleep(1 * time.Second)
	}
}
