package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reInvisible = regexp.MustCompile(`[\p{Cc}\p{Cf}]+`)

func stripInvisible(s string) string {
	return reInvisible.ReplaceAllStringFunc(s, func(m string) string {
		if strings.ContainsAny(m, "\n\t") {
			return " "
		}
		return ""
	})
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// NormalizeName trims and collapses whitespace in person names and titles.
func NormalizeName(input string) string {
	return Pipeline{stripInvisible, collapseSpaces}.Apply(input)
}

func NormalizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func NormalizeLabel(input string) string {
	return strings.ToLower(NormalizeName(input))
}

// NormalizeText keeps line breaks but trims every line and drops trailing blank lines.
func NormalizeText(input string) string {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SanitizeURL forces https, lowercases the host and drops utm_ parameters.
// Paths keep their case because object storage keys are case sensitive.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(lower, "http://"):
		s = "https://" + s[len("http://"):]
	default:
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// SanitizeSlice applies strategy to each value and drops empties and duplicates, keeping order.
func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
