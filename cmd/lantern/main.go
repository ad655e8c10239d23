// Lantern is a small embeddable HTTP/1.1 server for static content and
// custom routes.
//
// Every connection carries one request. Connections are admitted through a
// bounded, timed gate, so excess load is shed instead of queued forever.
//
// Usage:
//
//	# Serve the current configuration
//	lantern run --config lantern.yaml
//
//	# Validate a configuration file
//	lantern check --config lantern.yaml
//
//	# Pack a directory into a SQLite content bundle
//	lantern bundle import site.db ./public --prefix /www
//
//	# Show version information
//	lantern version
package main

func main() {
	Execute()
}
