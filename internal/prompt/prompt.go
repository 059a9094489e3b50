// Package prompt reads interactive input for the command-line tools.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Password prints label and reads a secret. Terminal input is not echoed;
// any other reader (pipes, tests) is read one line at a time.
func Password(stdin io.Reader, stdout io.Writer, label string) (string, error) {
	fmt.Fprint(stdout, label)
	defer fmt.Fprintln(stdout)

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return Line(stdin)
}

// Line reads a single line without its trailing newline.
func Line(stdin io.Reader) (string, error) {
	reader := bufio.NewReader(stdin)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
