package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

// timeNow — источник текущего времени для колонки SINCE.
var timeNow = time.Now

// parseID разбирает положительный числовой идентификатор.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: must be a positive integer", s)
	}
	return id, nil
}

// parseKeyValues разбирает флаги вида key=value.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		m[k] = v
	}
	return m, nil
}

// sinceCell возвращает ячейку с временем, прошедшим с ts.
// Пустой или нечитаемый ts показывается как "-".
func sinceCell(ts string) render.Cell {
	if ts == "" {
		return render.Text("-")
	}
	s, err := render.Since(ts, timeNow())
	if err != nil {
		return render.Text("-")
	}
	return render.Text(s)
}

// deleteEntity спрашивает подтверждение (если не yes) и удаляет сущность.
func deleteEntity(cmd *cobra.Command, out *Output, yes bool, kind domain.EntityKind, id int,
	del func(context.Context, int) error) error {
	if !yes {
		p := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if !p.Confirm(fmt.Sprintf("Delete %s %d?", kind, id)) {
			out.Success("Cancelled")
			return nil
		}
	}

	if err := del(cmd.Context(), id); err != nil {
		return err
	}
	out.Success(fmt.Sprintf("%s deleted: %d", capitalize(string(kind)), id))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
