package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrPromptAborted — ввод закончился (EOF) до получения ответа.
var ErrPromptAborted = errors.New("prompt aborted")

// Prompter задаёт вопросы пользователю построчно.
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewPrompter создаёт Prompter: вопросы пишутся в w, ответы читаются из r.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// String спрашивает строку. Пустой ответ означает def;
// если def пуст, вопрос повторяется.
func (p *Prompter) String(label, def string) (string, error) {
	for {
		answer, err := p.ask(label, def)
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// Int спрашивает целое число, повторяя вопрос при неверном вводе.
func (p *Prompter) Int(label string, def int) (int, error) {
	defStr := ""
	if def != 0 {
		defStr = strconv.Itoa(def)
	}

	for {
		answer, err := p.String(label, defStr)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.w, "%q is not a number\n", answer)
	}
}

// Bool спрашивает да/нет. Пустой ответ означает def.
func (p *Prompter) Bool(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		answer, err := p.ask(label+" ("+hint+")", "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, "please answer y or n")
	}
}

// Confirm спрашивает подтверждение, по умолчанию — нет.
// EOF считается отказом.
func (p *Prompter) Confirm(question string) bool {
	ok, err := p.Bool(question, false)
	return err == nil && ok
}

func (p *Prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.w, "%s: ", label)
	}

	line, err := p.r.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.w)
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return line, nil
}
