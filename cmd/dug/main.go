// Command dug is a one-shot DNS lookup tool: it sends a single query to a
// chosen resolver over UDP, TCP, DNS-over-TLS, or DNS-over-HTTPS and prints
// the decoded response.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}
