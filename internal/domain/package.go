package domain

// Package — именованный набор полей из данных plant.
type Package struct {
	ID        int      `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	PlantID   int      `json:"plant_id" yaml:"plant_id"`
	Fields    []string `json:"fields" yaml:"fields"`
	CreatedAt string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Input возвращает редактируемые поля package.
func (p *Package) Input() PackageInput {
	return PackageInput{
		Name:    p.Name,
		PlantID: p.PlantID,
		Fields:  p.Fields,
	}
}

// PackageInput — тело запроса на создание/изменение package.
type PackageInput struct {
	Name    string   `json:"name" yaml:"name"`
	PlantID int      `json:"plant_id" yaml:"plant_id"`
	Fields  []string `json:"fields" yaml:"fields"`
}
