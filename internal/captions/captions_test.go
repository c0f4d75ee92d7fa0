package captions

import (
	"strings"
	"testing"

	"mediakit/internal/pkg/errors"
)

const sampleSRT = "1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\nworld\r\n\r\n2\r\n00:00:03,250 --> 00:00:04,000\r\nSecond cue\r\n"

func TestSrtToASS(t *testing.T) {
	got, err := SrtToASS(sampleSRT)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.HasPrefix(got, "[Script Info]\n") {
		t.Errorf("missing header: %q", got[:40])
	}
	wantEvents := "Dialogue: 0,0:00:01.00,0:00:02.50,Default,,0,0,0,,Hello\\Nworld\n" +
		"Dialogue: 0,0:00:03.25,0:00:04.00,Default,,0,0,0,,Second cue\n"
	if !strings.HasSuffix(got, wantEvents) {
		t.Errorf("events mismatch:\n%s", got)
	}
}

func TestSrtToASSDropsOrphanText(t *testing.T) {
	got, err := SrtToASS("stray line\n1\n00:00:00,000 --> 00:00:01,000\nok\n")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.Contains(got, "stray") {
		t.Errorf("orphan text kept: %s", got)
	}
}

func TestSrtToASSEmpty(t *testing.T) {
	got, err := SrtToASS("")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.Contains(got, "Dialogue:") {
		t.Errorf("unexpected events: %s", got)
	}
}

func TestSrtToASSInvalidTimestamp(t *testing.T) {
	_, err := SrtToASS("1\n00:99:00,000 --> 00:00:01,000\nx\n")
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRGBToBGR(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "255,0,16", want: "16,0,255"},
		{in: " 1, 2 ,3", want: "3,2,1"},
		{in: "1,2", wantErr: true},
		{in: "red", wantErr: true},
		{in: "1,2,x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := RGBToBGR(tt.in)
		if tt.wantErr {
			if !errors.IsValidation(err) {
				t.Errorf("RGBToBGR(%q) expected validation error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("RGBToBGR(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
