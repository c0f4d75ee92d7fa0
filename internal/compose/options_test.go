package compose

import (
	"encoding/json"
	"testing"
)

func TestArgumentDecoding(t *testing.T) {
	tests := []struct {
		raw     string
		set     bool
		value   string
		wantErr bool
	}{
		{raw: `"libx264"`, set: true, value: "libx264"},
		{raw: `30`, set: true, value: "30"},
		{raw: `1.5`, set: true, value: "1.5"},
		{raw: `-0.25`, set: true, value: "-0.25"},
		{raw: `""`, set: true, value: ""},
		{raw: `null`, set: false},
		{raw: `true`, wantErr: true},
		{raw: `["a"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var a Argument
			err := json.Unmarshal([]byte(tt.raw), &a)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if a.IsSet() != tt.set || a.Value() != tt.value {
				t.Errorf("got (%v, %q), want (%v, %q)", a.IsSet(), a.Value(), tt.set, tt.value)
			}
		})
	}
}

func TestArgumentRoundTripKeepsType(t *testing.T) {
	opts := []Option{{Flag: "-r", Argument: Number("24")}, Arg("-c:a", "aac"), Flag("-y")}
	data, err := json.Marshal(opts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"option":"-r","argument":24},{"option":"-c:a","argument":"aac"},{"option":"-y","argument":null}]`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestMetadataRequestAny(t *testing.T) {
	if (MetadataRequest{}).Any() {
		t.Error("empty request should request nothing")
	}
	if !(MetadataRequest{Bitrate: true}).Any() {
		t.Error("bitrate-only request should be reported")
	}
}
