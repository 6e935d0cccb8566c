/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"testing"
)

const (
	APIServer    = "api_server"
	WeeklyDigest = "weekly_digest"
)

var (
	IsDevelopment *bool
	ServiceName   *string
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", APIServer, "'api_server' or 'weekly_digest'")
	// In test binaries the testing package registers its -test.* flags
	// after package init, so parsing here would reject them.
	if !testing.Testing() {
		flag.Parse()
	}
}
