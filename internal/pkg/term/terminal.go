// Package term содержит взаимодействие с терминалом пользователя.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// DefaultWidth используется, когда ширину терминала определить нельзя.
const DefaultWidth = 100

// Terminal обеспечивает интерактивные подтверждения и сведения о терминале.
type Terminal struct {
	in       *bufio.Reader
	out      io.Writer
	stdinfd  int
	stdoutfd int
}

// NewTerminal создает новый экземпляр Terminal для stdin/stdout процесса.
func NewTerminal() *Terminal {
	return &Terminal{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		stdinfd:  int(os.Stdin.Fd()),
		stdoutfd: int(os.Stdout.Fd()),
	}
}

// NewTerminalWithIO создает Terminal поверх произвольных потоков.
// Такой терминал никогда не считается интерактивным.
func NewTerminalWithIO(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:       bufio.NewReader(in),
		out:      out,
		stdinfd:  -1,
		stdoutfd: -1,
	}
}

// IsInteractive сообщает, подключен ли stdin к терминалу.
func (t *Terminal) IsInteractive() bool {
	return t.stdinfd >= 0 && term.IsTerminal(t.stdinfd)
}

// Width возвращает ширину терминала в колонках.
func (t *Terminal) Width() int {
	if t.stdoutfd < 0 || !term.IsTerminal(t.stdoutfd) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(t.stdoutfd)
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Confirm задает вопрос и ждет ответа y/n. Пустой ответ означает "нет".
func (t *Terminal) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	answer, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || answer == "") {
		return false, xerrors.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}
