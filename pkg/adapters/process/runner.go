// Package process typesets math by running an external program, for example
// a MathJax or KaTeX command-line wrapper.
//
// The program receives the expression on stdin and in environment variables:
//
//	MATHSPAN_ARG_MATH     expression without delimiters
//	MATHSPAN_ARG_KIND     InlineMath or DisplayMath
//	MATHSPAN_ARG_DISPLAY  "true" for display math
//
// Its stdout becomes the rendered content. A non-zero exit is a render failure.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
)

// ErrRender is returned when the program fails.
var ErrRender = errors.New("render command failed")

// EnvPrefix prefixes the variables passed to the program.
const EnvPrefix = "MATHSPAN_ARG_"

// Typesetter implements ports.Typesetter with an external command.
type Typesetter struct {
	command string
	args    []string
	baseDir string
	env     []string
}

// Option configures the Typesetter.
type Option func(*Typesetter)

// WithBaseDir sets the working directory of the program.
func WithBaseDir(dir string) Option {
	return func(t *Typesetter) {
		t.baseDir = dir
	}
}

// WithEnv adds KEY=VALUE pairs to the program's environment.
func WithEnv(env ...string) Option {
	return func(t *Typesetter) {
		t.env = append(t.env, env...)
	}
}

// New creates a Typesetter running command with args. Arguments are fixed;
// math source never reaches the command line.
func New(command string, args []string, opts ...Option) *Typesetter {
	t := &Typesetter{
		command: command,
		args:    args,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromArgv creates a Typesetter from a command line split into words.
func FromArgv(argv []string, opts ...Option) (*Typesetter, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty render command")
	}
	return New(argv[0], argv[1:], opts...), nil
}

// Typeset renders source into target.
func (t *Typesetter) Typeset(ctx context.Context, target ports.Surface, source string) error {
	out, err := t.Render(ctx, source)
	if err != nil {
		return err
	}
	target.SetContent(out)
	return nil
}

// Render runs the program for the delimited source and returns its output.
func (t *Typesetter) Render(ctx context.Context, source string) (string, error) {
	kind, expr, ok := domain.Classify(source)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNoMath, source)
	}

	cmd := exec.CommandContext(ctx, t.command, t.args...)
	cmd.Dir = t.baseDir
	cmd.Stdin = strings.NewReader(expr)
	cmd.Env = append(cmd.Environ(), t.env...)
	cmd.Env = append(cmd.Env,
		EnvPrefix+"MATH="+expr,
		EnvPrefix+"KIND="+string(kind),
		EnvPrefix+"DISPLAY="+strconv.FormatBool(kind == domain.MathDisplay),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v: %s", ErrRender, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}
