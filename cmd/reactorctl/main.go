// Command reactorctl is a small demo binary exercising reactorcore end to
// end: "serve" runs the loopback-echo scenario (S1), "dial" drives a
// connector against a remote address to exercise the backoff scenario (S2).
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
