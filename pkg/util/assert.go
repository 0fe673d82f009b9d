package util

import (
	"fmt"

	"github.com/golang/glog"
)

const assertFailure = "internal compiler error"

// Assertf aborts the compiler when an internal invariant does not hold.
func Assertf(cond bool, msg string, args ...interface{}) {
	if !cond {
		glog.Fatalf("%v: %v", assertFailure, fmt.Sprintf(msg, args...))
	}
}
