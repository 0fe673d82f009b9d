package codegen

import (
	"bytes"

	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/parser"
)

// Backend is the interface that all code generation backends must implement.
type Backend interface {
	// Generate takes a checked translation unit and a configuration, and
	// produces the target assembly as a byte buffer. The unit must be free
	// of semantic errors.
	Generate(unit *parser.Unit, cfg *config.Config) (*bytes.Buffer, error)
}
