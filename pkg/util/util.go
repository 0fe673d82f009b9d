package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Diagnostic is one recorded error, stamped with the token it was reported at.
type Diagnostic struct {
	Tok token.Token
	Msg string
}

func (d *Diagnostic) Error() string { return fmt.Sprintf("line %d: %s", d.Tok.Line, d.Msg) }

// Reporter records lexical and semantic diagnostics for one translation unit.
// Every diagnostic is printed as soon as it is reported and counted, so a
// compilation can keep going and still know whether it may emit assembly.
type Reporter struct {
	out   io.Writer
	cfg   *config.Config
	files []SourceFileRecord
	color bool
	errs  *multierror.Error
	count int
	fatal bool
}

func NewReporter(out io.Writer, cfg *config.Config) *Reporter {
	return &Reporter{
		out:   out,
		cfg:   cfg,
		color: cfg.IsFeatureEnabled(config.FeatColor) && isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetSourceFiles stores the source code for all input files for rich error messages
func (r *Reporter) SetSourceFiles(files []SourceFileRecord) { r.files = files }

// Count returns the number of errors recorded so far.
func (r *Reporter) Count() int { return r.count }

// Fatal reports whether a syntax error has been reported.
func (r *Reporter) Fatal() bool { return r.fatal }

// Err returns all recorded errors as one error, or nil if there were none.
func (r *Reporter) Err() error { return r.errs.ErrorOrNil() }

// Diagnostics returns the recorded errors in the order they were reported.
func (r *Reporter) Diagnostics() []*Diagnostic {
	if r.errs == nil {
		return nil
	}
	diags := make([]*Diagnostic, 0, len(r.errs.Errors))
	for _, err := range r.errs.Errors {
		if d, ok := err.(*Diagnostic); ok {
			diags = append(diags, d)
		}
	}
	return diags
}

// Error records and prints a recoverable error.
func (r *Reporter) Error(tok token.Token, format string, args ...interface{}) {
	d := &Diagnostic{Tok: tok, Msg: fmt.Sprintf(format, args...)}
	r.errs = multierror.Append(r.errs, d)
	r.count++
	r.print("error", "\033[31m", d, "")
}

// SyntaxError records and prints an unrecoverable error. The caller is
// expected to stop parsing right after.
func (r *Reporter) SyntaxError(tok token.Token, format string, args ...interface{}) {
	r.fatal = true
	r.Error(tok, format, args...)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func (r *Reporter) Warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !r.cfg.IsWarningEnabled(wt) {
		return
	}
	d := &Diagnostic{Tok: tok, Msg: fmt.Sprintf(format, args...)}
	r.print("warning", "\033[33m", d, fmt.Sprintf(" [-W%s]", r.cfg.Warnings[wt].Name))
}

func (r *Reporter) print(kind, color string, d *Diagnostic, suffix string) {
	if !r.cfg.IsFeatureEnabled(config.FeatCaret) {
		if kind == "error" {
			fmt.Fprintf(r.out, "line %d: %s%s\n", d.Tok.Line, d.Msg, suffix)
		} else {
			fmt.Fprintf(r.out, "line %d: %s: %s%s\n", d.Tok.Line, kind, d.Msg, suffix)
		}
		return
	}

	filename, line, col := r.findFileAndLine(d.Tok)
	fmt.Fprintf(r.out, "%s:%d:%d: %s ", filename, line, col, r.paint(color, kind+":"))
	fmt.Fprintf(r.out, "%s%s\n", d.Msg, suffix)
	r.printErrorLine(d.Tok)
}

func (r *Reporter) paint(color, s string) string {
	if !r.color {
		return s
	}
	return color + s + "\033[0m"
}

// findFileAndLine converts a global token to a file-specific location
func (r *Reporter) findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.files) {
		return "<stdin>", tok.Line, tok.Column
	}
	return r.files[tok.FileIndex].Name, tok.Line, tok.Column
}

// printErrorLine prints the source line and a caret indicating the error position
func (r *Reporter) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.files) || tok.Line == 0 {
		return
	}

	content := r.files[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, c := range content {
		if lineNum <= 1 {
			break
		}
		if c == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(r.out, "  %s\n", string(content[lineStart:lineEnd]))

	col := tok.Column
	if col < 1 {
		col = 1
	}
	marker := "^"
	if tok.Len > 1 {
		marker += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(r.out, "  %s%s\n", strings.Repeat(" ", col-1), r.paint("\033[32m", marker))
}
