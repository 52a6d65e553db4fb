package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// WrapText wraps text to fit within maxWidth display cells, breaking on word
// boundaries when possible. Newlines in the input are kept as line breaks.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.ReplaceAll(line, "\t", "    ")
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// wrapLine wraps a single over-long line. Words wider than maxWidth are
// split by rune.
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		result = append(result, current.String())
		current.Reset()
		currentWidth = 0
	}

	for _, word := range strings.FieldsFunc(line, unicode.IsSpace) {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > maxWidth {
			if currentWidth > 0 {
				flush()
			}
			for _, r := range word {
				w := runewidth.RuneWidth(r)
				if currentWidth+w > maxWidth {
					flush()
				}
				current.WriteRune(r)
				currentWidth += w
			}
			continue
		}

		needed := wordWidth
		if currentWidth > 0 {
			needed++
		}
		if currentWidth+needed > maxWidth {
			flush()
		} else if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		result = append(result, current.String())
	}
	return result
}

// Preview returns a single-line summary of content no wider than maxWidth
// cells: the first non-blank line with control characters and runs of
// whitespace collapsed.
func Preview(content string, maxWidth int) string {
	title := ""
	for _, line := range strings.Split(content, "\n") {
		if cleaned := sanitize(line); cleaned != "" {
			title = cleaned
			break
		}
	}
	if title == "" {
		title = "[blank]"
	}
	return Truncate(title, maxWidth)
}

// Truncate shortens s to maxWidth cells, marking the cut with an ellipsis.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func stringWidth(s string) int {
	return runewidth.StringWidth(s)
}
