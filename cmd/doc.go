// Package cmd implements the bookingbot command line interface: the
// serve command running the booking API server, and version.
package cmd
