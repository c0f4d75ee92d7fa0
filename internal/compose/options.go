// Package compose turns a declarative composition request into a single
// ordered ffmpeg argument vector and resolves the files that run produced.
//
// The package never interprets option semantics beyond the output format
// selector; flags and arguments are passed through in request order.
package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Argument is the optional value of an Option. It holds a JSON string or a
// JSON number; numbers keep their literal text so 30 renders as "30" and 1.5
// as "1.5". The zero value is an absent (or null) argument.
type Argument struct {
	value   string
	present bool
	numeric bool
}

// String returns a string argument.
func String(v string) Argument {
	return Argument{value: v, present: true}
}

// Number returns a numeric argument from its literal text.
func Number(literal string) Argument {
	return Argument{value: literal, present: true, numeric: true}
}

// IsSet reports whether the argument carries a value.
func (a Argument) IsSet() bool { return a.present }

// Value returns the argument text, or "" when absent.
func (a Argument) Value() string { return a.value }

// UnmarshalJSON accepts a string, a number or null.
func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Argument{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = String(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("argument must be a string, number or null: %s", data)
	}
	*a = Number(n.String())
	return nil
}

// MarshalJSON renders the argument back in its original JSON type.
func (a Argument) MarshalJSON() ([]byte, error) {
	switch {
	case !a.present:
		return []byte("null"), nil
	case a.numeric:
		return []byte(a.value), nil
	default:
		return json.Marshal(a.value)
	}
}

// Option is one flag with its optional argument, e.g. {"-c:v", "libx264"}.
type Option struct {
	Flag     string   `json:"option"`
	Argument Argument `json:"argument"`
}

// Flag returns an option without an argument.
func Flag(flag string) Option {
	return Option{Flag: flag}
}

// Arg returns an option with a string argument.
func Arg(flag, value string) Option {
	return Option{Flag: flag, Argument: String(value)}
}

// appendOptions emits each option as "flag [argument]".
func appendOptions(args []string, opts []Option) []string {
	for _, o := range opts {
		args = append(args, o.Flag)
		if o.Argument.IsSet() {
			args = append(args, o.Argument.Value())
		}
	}
	return args
}

// Input is a source as received in a request.
type Input struct {
	FileURL string   `json:"file_url"`
	Options []Option `json:"options,omitempty"`
}

// LocalInput is an Input whose source has been materialized on local disk.
type LocalInput struct {
	Path    string
	Options []Option
}

// Filter is one filter-graph expression, passed through unparsed.
type Filter struct {
	Expression string `json:"filter"`
}

// Output is one output destination described only by its options.
type Output struct {
	Options []Option `json:"options"`
}

// MetadataRequest selects which metadata fields to extract per artifact.
type MetadataRequest struct {
	Filesize bool `json:"filesize,omitempty"`
	Duration bool `json:"duration,omitempty"`
	Bitrate  bool `json:"bitrate,omitempty"`
}

// Any reports whether at least one field is requested.
func (m MetadataRequest) Any() bool {
	return m.Filesize || m.Duration || m.Bitrate
}

// Request is a validated composition request.
type Request struct {
	Inputs        []Input         `json:"inputs"`
	Filters       []Filter        `json:"filters,omitempty"`
	Outputs       []Output        `json:"outputs"`
	GlobalOptions []Option        `json:"global_options,omitempty"`
	Metadata      MetadataRequest `json:"metadata,omitempty"`
}
