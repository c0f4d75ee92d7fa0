package compose

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"mediakit/internal/pkg/errors"
)

// Artifact is one concrete file produced for a declared output.
type Artifact struct {
	OutputIndex int
	LocalPath   string
	Metadata    *Metadata
}

// Resolve maps declared outputs to the files present on disk. Every declared
// output must yield at least one file: a missing singleton, or a sequence
// pattern with zero matches, fails with OUTPUT_NOT_FOUND. Sequence matches are
// returned in frame-number order, which keeps counting past the padding width
// (_999, _1000).
func Resolve(outputs []DeclaredOutput) ([]Artifact, error) {
	var artifacts []Artifact

	for _, out := range outputs {
		if !out.Sequence {
			st, err := os.Stat(out.Path)
			if err != nil || st.IsDir() {
				return nil, errors.OutputNotFound(out.Path).WithField("output_index", out.Index)
			}
			artifacts = append(artifacts, Artifact{OutputIndex: out.Index, LocalPath: out.Path})
			continue
		}

		matches, err := filepath.Glob(sequenceGlob(out.Path))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeOutputNotFound, "compose.resolve", "invalid sequence pattern")
		}
		if len(matches) == 0 {
			return nil, errors.OutputNotFound(out.Path).WithField("output_index", out.Index)
		}
		sortFrames(matches, filepath.Base(out.Path))
		for _, m := range matches {
			artifacts = append(artifacts, Artifact{OutputIndex: out.Index, LocalPath: m})
		}
	}

	if len(artifacts) == 0 {
		return nil, errors.New(errors.CodeOutputNotFound, "no output produced")
	}
	return artifacts, nil
}

// sortFrames orders matches by the number that replaced the placeholder in
// base, falling back to text order for ties and unparsable names.
func sortFrames(matches []string, base string) {
	prefix, suffix, _ := strings.Cut(base, SequencePlaceholder)
	frame := func(path string) int {
		name := filepath.Base(path)
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) || len(name) < len(prefix)+len(suffix) {
			return -1
		}
		n, err := strconv.Atoi(name[len(prefix) : len(name)-len(suffix)])
		if err != nil {
			return -1
		}
		return n
	}
	slices.SortFunc(matches, func(a, b string) int {
		if c := cmp.Compare(frame(a), frame(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// sequenceGlob turns a %03d pattern into a glob. Glob metacharacters already in
// the temp path are escaped so only the placeholder widens the match.
func sequenceGlob(pattern string) string {
	dir, base := filepath.Split(pattern)
	parts := strings.Split(base, SequencePlaceholder)
	for i, p := range parts {
		parts[i] = escapeGlob(p)
	}
	return escapeGlob(dir) + strings.Join(parts, "*")
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
