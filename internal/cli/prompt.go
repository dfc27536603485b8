// Package cli holds terminal helpers for the cyclesense administration commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

// Prompter reads secrets from in, echoing prompts to out. When in is a
// terminal, echo is disabled while the secret is typed.
type Prompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in *os.File, out io.Writer) *Prompter {
	return &Prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (prompter *Prompter) Password(label string) (string, error) {
	if prompter.in == nil {
		return "", errors.New("stdin unavailable")
	}
	fmt.Fprint(prompter.out, label)

	restore, err := disableEcho(prompter.in)
	if err == nil {
		defer func() {
			restore()
			fmt.Fprintln(prompter.out)
		}()
	}

	line, err := prompter.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewPassword asks for a password twice and returns it once both entries match.
func (prompter *Prompter) NewPassword() (string, error) {
	password, err := prompter.Password("New password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrEmptyPassword
	}

	confirmation, err := prompter.Password("Repeat password: ")
	if err != nil {
		return "", err
	}
	if confirmation != password {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
