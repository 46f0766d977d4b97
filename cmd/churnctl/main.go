// Command churnctl scores subscriber profiles against a local or GCS
// artifact set and manages service credentials.
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
