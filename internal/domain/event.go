package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange — наблюдаемая смена состояния plant или worker'а.
//
// Создаётся watcher'ом при сравнении двух последовательных опросов.
// Первое наблюдение сущности событием не считается.
type StatusChange struct {
	// ID — уникальный идентификатор события.
	ID uuid.UUID `json:"id" yaml:"id"`

	// Entity — тип сущности (plant или worker).
	Entity EntityKind `json:"entity" yaml:"entity"`

	// EntityID — идентификатор сущности в backend'е.
	EntityID int `json:"entity_id" yaml:"entity_id"`

	// Name — имя сущности на момент наблюдения.
	Name string `json:"name" yaml:"name"`

	// From, To — предыдущее и новое состояние.
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// ObservedAt — время опроса, на котором замечена смена.
	ObservedAt time.Time `json:"observed_at" yaml:"observed_at"`
}

// NewStatusChange создаёт событие с новым ID.
func NewStatusChange(entity EntityKind, id int, name, from, to string, at time.Time) StatusChange {
	return StatusChange{
		ID:         uuid.New(),
		Entity:     entity,
		EntityID:   id,
		Name:       name,
		From:       from,
		To:         to,
		ObservedAt: at.UTC(),
	}
}
