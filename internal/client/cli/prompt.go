package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdinSecret reads a password from the terminal without echo. It is nil
// when stdin is not a terminal, in which case passwords are read as
// ordinary input lines.
func stdinSecret() func() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() ([]byte, error) { return term.ReadPassword(fd) }
}

// line reads the next input line without its line ending. A last line
// with no newline still counts.
func (a *App) line() (string, error) {
	s, err := a.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (a *App) ask(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	s, err := a.line()
	return strings.TrimSpace(s), err
}

func (a *App) askSecret(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	if a.readSecret == nil {
		return a.line()
	}
	b, err := a.readSecret()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
