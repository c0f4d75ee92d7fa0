// Package captions converts SubRip subtitles to the ASS format ffmpeg's
// subtitles filter burns into video.
package captions

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"mediakit/internal/pkg/errors"
)

const assHeader = "[Script Info]\n" +
	"ScriptType: v4.00+\n" +
	"PlayDepth: 0\n\n" +
	"[V4+ Styles]\n" +
	"Format: Name, Fontname, Fontsize, PrimaryColour, BackColour, Bold, Italic, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
	"Style: Default,Arial,20,&H00FFFFFF,&H000000FF,-1,0,1,1,1,2,10,10,10,1\n\n" +
	"[Events]\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n"

const (
	timingArrow = "-->"
	lineBreak   = `\N`
)

// SrtToASS converts SRT text to an ASS document using the default style.
// Consecutive text lines of one cue are joined with the ASS hard line break.
// Text appearing before the first timing line is dropped.
func SrtToASS(srt string) (string, error) {
	var events []string
	var current *strings.Builder
	hasText := false

	flush := func() {
		if current != nil {
			events = append(events, current.String())
		}
		current = nil
		hasText = false
	}

	sc := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(srt, "\ufeff")))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.Contains(line, timingArrow):
			flush()
			start, end, err := parseTiming(line)
			if err != nil {
				return "", err
			}
			current = &strings.Builder{}
			fmt.Fprintf(current, "Dialogue: 0,%s,%s,Default,,0,0,0,,", start, end)
		case trimmed == "" || isDigits(trimmed):
			continue
		case current != nil:
			if hasText {
				current.WriteString(lineBreak)
			}
			current.WriteString(trimmed)
			hasText = true
		}
	}
	if err := sc.Err(); err != nil {
		return "", errors.WrapWithCode(err, errors.CodeValidation, "captions.srt_to_ass", "unreadable srt")
	}
	flush()

	return assHeader + strings.Join(events, "\n") + "\n", nil
}

func parseTiming(line string) (string, string, error) {
	parts := strings.SplitN(line, timingArrow, 2)
	start, err := assTimestamp(parts[0])
	if err != nil {
		return "", "", err
	}
	// cue settings may follow the end timestamp
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return "", "", errors.ValidationField("srt_file", fmt.Sprintf("missing end time in %q", line))
	}
	end, err := assTimestamp(endField[0])
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// assTimestamp turns "HH:MM:SS,mmm" into "H:MM:SS.cc".
func assTimestamp(ts string) (string, error) {
	ts = strings.TrimSpace(strings.Replace(ts, ",", ".", 1))
	bad := errors.ValidationField("srt_file", fmt.Sprintf("invalid timestamp %q", ts))

	hms, frac, _ := strings.Cut(ts, ".")
	fields := strings.Split(hms, ":")
	if len(fields) != 3 {
		return "", bad
	}
	var n [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return "", bad
		}
		n[i] = v
	}
	if n[1] > 59 || n[2] > 59 {
		return "", bad
	}

	centis := 0
	if frac != "" {
		if !isDigits(frac) {
			return "", bad
		}
		frac = (frac + "00")[:2]
		centis, _ = strconv.Atoi(frac)
	}
	return fmt.Sprintf("%d:%02d:%02d.%02d", n[0], n[1], n[2], centis), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
