package domain

// Action — процедура, выполняемая backend'ом по запросу.
type Action struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// WorkerID — worker, на котором выполняется action (0 — любой).
	WorkerID int `json:"worker_id,omitempty" yaml:"worker_id,omitempty"`

	// Command — команда, которую исполняет backend.
	Command string `json:"command" yaml:"command"`

	LastRunAt string `json:"last_run_at,omitempty" yaml:"last_run_at,omitempty"`
}

// Input возвращает редактируемые поля action.
func (a *Action) Input() ActionInput {
	return ActionInput{
		Name:        a.Name,
		Description: a.Description,
		WorkerID:    a.WorkerID,
		Command:     a.Command,
	}
}

// ActionInput — тело запроса на создание/изменение action.
type ActionInput struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	WorkerID    int    `json:"worker_id,omitempty" yaml:"worker_id,omitempty"`
	Command     string `json:"command" yaml:"command"`
}
