package compose

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	inputFlag       = "-i"
	filterGraphFlag = "-filter_complex"
	filterSeparator = ";"
)

// DeclaredOutput is the destination the composer assigned to one Output.
type DeclaredOutput struct {
	Index    int
	Format   string
	Path     string // concrete path, or a %03d pattern when Sequence is set
	Sequence bool
}

// Plan is a composed invocation: the tool binary, its argument vector and the
// outputs it is expected to produce.
type Plan struct {
	Binary  string
	Args    []string
	Outputs []DeclaredOutput
}

// Argv returns the full vector including the binary.
func (p Plan) Argv() []string {
	return append([]string{p.Binary}, p.Args...)
}

// String renders the plan as a quoted command line. For logs only; the plan is
// always executed as an argument vector.
func (p Plan) String() string {
	argv := p.Argv()
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

// Composer builds plans for one tool binary writing into one temp directory.
type Composer struct {
	Binary  string
	TempDir string
}

// NewComposer returns a Composer; an empty binary means "ffmpeg".
func NewComposer(binary, tempDir string) *Composer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Composer{Binary: binary, TempDir: tempDir}
}

// Compose lays out the argument vector positionally: global options, then per
// input its options followed by -i <path>, then one -filter_complex with all
// expressions joined by ";", then per output its options followed by its
// destination. inputs must be in request order.
func (c *Composer) Compose(jobID string, inputs []LocalInput, req Request) Plan {
	args := make([]string, 0, 16)

	args = appendOptions(args, req.GlobalOptions)

	for _, in := range inputs {
		args = appendOptions(args, in.Options)
		args = append(args, inputFlag, in.Path)
	}

	if len(req.Filters) > 0 {
		exprs := make([]string, len(req.Filters))
		for i, f := range req.Filters {
			exprs[i] = f.Expression
		}
		args = append(args, filterGraphFlag, strings.Join(exprs, filterSeparator))
	}

	outputs := make([]DeclaredOutput, 0, len(req.Outputs))
	for i, out := range req.Outputs {
		decl := c.declare(jobID, i, formatOf(out.Options))
		outputs = append(outputs, decl)

		args = appendOptions(args, out.Options)
		args = append(args, decl.Path)
	}

	return Plan{Binary: c.Binary, Args: args, Outputs: outputs}
}

func (c *Composer) declare(jobID string, index int, format string) DeclaredOutput {
	ext := ExtensionFor(format)
	if IsSequence(format) {
		name := fmt.Sprintf("%s_output_%d_%s.%s", jobID, index, SequencePlaceholder, ext)
		return DeclaredOutput{Index: index, Format: format, Path: filepath.Join(c.TempDir, name), Sequence: true}
	}
	name := fmt.Sprintf("%s_output_%d.%s", jobID, index, ext)
	return DeclaredOutput{Index: index, Format: format, Path: filepath.Join(c.TempDir, name)}
}

func quoteArg(a string) string {
	if a == "" {
		return "''"
	}
	if strings.IndexFunc(a, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r == '/' || r == ':' || r == '=' || r == '%' || r == ',' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	}) < 0 {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}
