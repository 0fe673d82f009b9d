package util

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
)

// InitLogging routes glog to stderr at the given verbosity. The compiler has
// its own flag parser, so glog's flags are set here instead of on the
// command line.
func InitLogging(verbose int) {
	_ = flag.CommandLine.Parse(nil)
	_ = flag.Set("logtostderr", "true")
	if verbose > 0 {
		_ = flag.Set("v", strconv.Itoa(verbose))
	}
	glog.V(1).Infof("logging at verbosity %d", verbose)
}
