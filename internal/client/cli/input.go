package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// prompt writes label and reads one line. A final line without a newline is
// accepted.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", label); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal, otherwise it
// reads a plain line so passwords can be piped in.
func (a *App) promptPassword(label string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		if _, err := fmt.Fprintf(a.stderr, "%s: ", label); err != nil {
			return "", err
		}
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// valueOrPrompt returns v, prompting for it when empty.
func (a *App) valueOrPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return prompt(a.in, a.stderr, label)
}
