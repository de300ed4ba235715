package domain

// Plant — источник данных, с которого собираются показания.
type Plant struct {
	// ID — идентификатор plant в backend'е.
	ID int `json:"id" yaml:"id"`

	// Name — отображаемое имя.
	Name string `json:"name" yaml:"name"`

	// URL — адрес источника данных.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Collect — 1, если сбор включён, иначе 0.
	Collect int `json:"collect" yaml:"collect"`

	// Status — 1, если источник жив, иначе 0. Имеет смысл только при Collect=1.
	Status int `json:"status" yaml:"status"`

	// PicksCount — число picks, ссылающихся на plant.
	PicksCount int `json:"picks_count" yaml:"picks_count"`

	// LastStatusChange — ISO-8601 время последней смены status.
	LastStatusChange string `json:"last_status_change,omitempty" yaml:"last_status_change,omitempty"`

	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// IsCollecting возвращает true, если сбор включён.
func (p *Plant) IsCollecting() bool {
	return p.Collect != 0
}

// State возвращает состояние plant.
func (p *Plant) State() PlantState {
	switch {
	case !p.IsCollecting():
		return PlantStateIdle
	case p.Status == 0:
		return PlantStateDead
	default:
		return PlantStateAlive
	}
}

// Input возвращает редактируемые поля plant.
func (p *Plant) Input() PlantInput {
	return PlantInput{
		Name:    p.Name,
		URL:     p.URL,
		Collect: p.Collect,
	}
}

// PlantInput — тело запроса на создание/изменение plant.
type PlantInput struct {
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	Collect int    `json:"collect" yaml:"collect"`
}
