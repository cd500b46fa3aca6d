package cmd

import (
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatValue renders a metric value with three decimals and a percent sign,
// or "- -" when missing.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "- -"
	}
	return strconv.FormatFloat(v, 'f', 3, 64) + "%"
}

// formatGrowth renders an annual growth rate with an explicit sign.
func formatGrowth(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if v >= 0 {
		s = "+" + s
	}
	return s + "/yr"
}

// bar draws a horizontal bar of up to width cells for v relative to max,
// using eighth-block glyphs for the fractional cell.
func bar(v, max float64, width int) string {
	if max <= 0 || v <= 0 || math.IsNaN(v) {
		return ""
	}
	partial := []rune(" ▏▎▍▌▋▊▉")
	eighths := int(math.Round(v / max * float64(width*8)))
	if eighths > width*8 {
		eighths = width * 8
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("█", eighths/8))
	if rem := eighths % 8; rem > 0 {
		sb.WriteRune(partial[rem])
	}
	return sb.String()
}

// padRight pads s to width terminal cells. Hangul takes two cells per
// rune, so byte or rune counts misalign the columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// padLeft right-aligns s in width terminal cells.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// maxWidth returns the widest display width among names, at least min.
func maxWidth(names []string, min int) int {
	w := min
	for _, n := range names {
		if sw := runewidth.StringWidth(n); sw > w {
			w = sw
		}
	}
	return w
}

// hexColor renders an RGBA marker color as #rrggbbaa.
func hexColor(c [4]uint8) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 0, 9)
	b = append(b, '#')
	for _, v := range c {
		b = append(b, digits[v>>4], digits[v&0x0f])
	}
	return string(b)
}

// reorderArgs moves positional arguments to the end so that Go's flag package
// can parse all flags regardless of where a positional argument appears.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			// Consume the next arg as the flag's value unless it looks like a flag itself.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !strings.Contains(args[i], "=") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func quoteList(list []string) string {
	quoted := make([]string, len(list))
	for i, s := range list {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
