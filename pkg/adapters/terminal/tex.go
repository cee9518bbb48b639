package terminal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidTeX is returned for math the typesetter refuses to render.
var ErrInvalidTeX = errors.New("invalid tex")

var envRegex = regexp.MustCompile(`\\(begin|end)\{([^}]*)\}`)

// CheckTeX reports structural errors in a TeX expression: blank input,
// unbalanced braces, a dangling backslash and mismatched environments.
func CheckTeX(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: empty expression", ErrInvalidTeX)
	}

	depth := 0
	escaped := false
	for i, r := range expr {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected '}' at offset %d", ErrInvalidTeX, i)
			}
		}
	}
	if escaped {
		return fmt.Errorf("%w: dangling backslash", ErrInvalidTeX)
	}
	if depth > 0 {
		return fmt.Errorf("%w: %d unclosed '{'", ErrInvalidTeX, depth)
	}

	var envs []string
	for _, m := range envRegex.FindAllStringSubmatch(expr, -1) {
		name := m[2]
		if m[1] == "begin" {
			envs = append(envs, name)
			continue
		}
		if len(envs) == 0 || envs[len(envs)-1] != name {
			return fmt.Errorf("%w: unexpected \\end{%s}", ErrInvalidTeX, name)
		}
		envs = envs[:len(envs)-1]
	}
	if len(envs) > 0 {
		return fmt.Errorf("%w: unclosed \\begin{%s}", ErrInvalidTeX, envs[len(envs)-1])
	}
	return nil
}
