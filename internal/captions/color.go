package captions

import (
	"fmt"
	"strconv"
	"strings"

	"mediakit/internal/pkg/errors"
)

// RGBToBGR reorders an "R,G,B" triple to "B,G,R", the channel order ASS uses.
func RGBToBGR(color string) (string, error) {
	parts := strings.Split(color, ",")
	if len(parts) != 3 {
		return "", errors.ValidationField("color", "invalid RGB format, expected 'R,G,B'")
	}
	var c [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", errors.ValidationField("color", "invalid RGB format, expected 'R,G,B'")
		}
		c[i] = v
	}
	return fmt.Sprintf("%d,%d,%d", c[2], c[1], c[0]), nil
}
