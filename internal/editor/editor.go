// Package editor открывает внешний текстовый редактор ($VISUAL, $EDITOR)
// на временном файле и возвращает отредактированное содержимое.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand — редактор, если $VISUAL и $EDITOR не заданы.
const DefaultCommand = "vi"

// ErrNoEditor — команда редактора пуста.
var ErrNoEditor = errors.New("no editor configured")

// Editor запускает внешний редактор.
type Editor struct {
	// Command — команда с аргументами, путь к файлу добавляется последним.
	Command string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// FromEnv создаёт Editor по $VISUAL, затем $EDITOR, затем DefaultCommand.
func FromEnv() *Editor {
	command := DefaultCommand
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			command = v
			break
		}
	}

	return &Editor{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit записывает content во временный файл с шаблоном имени pattern
// (например "garden-plant-*.yaml"), открывает редактор и возвращает
// содержимое файла после выхода из редактора.
func (e *Editor) Edit(ctx context.Context, content []byte, pattern string) ([]byte, error) {
	args := strings.Fields(e.Command)
	if len(args) == 0 {
		return nil, ErrNoEditor
	}

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor %q: %w", args[0], err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return edited, nil
}
