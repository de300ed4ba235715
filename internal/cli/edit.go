package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/do-nan-fer/Garden-CLI/internal/editor"
)

// ErrEditAborted — пользователь не изменил документ или очистил его.
var ErrEditAborted = errors.New("edit aborted")

// editDocument открывает редактор на content. Подменяется в тестах.
var editDocument = func(ctx context.Context, content []byte, pattern string) ([]byte, error) {
	return editor.FromEnv().Edit(ctx, content, pattern)
}

const editHeader = `# Edit the fields below, save and quit to apply.
# Lines starting with '#' are ignored. An empty file cancels the edit.
`

// editYAML открывает current в редакторе как YAML и возвращает результат.
// Возвращает ErrEditAborted, если документ не изменился или пуст.
func editYAML[T any](ctx context.Context, kind string, current T) (T, error) {
	var zero T

	body, err := yaml.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", kind, err)
	}
	original := append([]byte(editHeader), body...)

	edited, err := editDocument(ctx, original, "garden-"+kind+"-*.yaml")
	if err != nil {
		return zero, err
	}

	if bytes.Equal(edited, original) {
		return zero, fmt.Errorf("%w: no changes", ErrEditAborted)
	}
	if isBlankYAML(edited) {
		return zero, fmt.Errorf("%w: empty document", ErrEditAborted)
	}

	var result T
	if err := yaml.Unmarshal(edited, &result); err != nil {
		return zero, fmt.Errorf("parse edited %s: %w", kind, err)
	}
	return result, nil
}

func isBlankYAML(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return false
		}
	}
	return true
}
