package domain

// Worker — единица сбора данных, исполняющая picks по интервалу.
type Worker struct {
	ID     int          `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Status WorkerStatus `json:"status" yaml:"status"`

	// Interval — период сбора в секундах.
	Interval int `json:"interval" yaml:"interval"`

	// LastStatusChange — ISO-8601 время последней смены status.
	LastStatusChange string `json:"last_status_change,omitempty" yaml:"last_status_change,omitempty"`
}

// Input возвращает редактируемые поля worker'а.
func (w *Worker) Input() WorkerInput {
	return WorkerInput{
		Name:     w.Name,
		Interval: w.Interval,
	}
}

// WorkerInput — тело запроса на создание/изменение worker'а.
type WorkerInput struct {
	Name     string `json:"name" yaml:"name"`
	Interval int    `json:"interval" yaml:"interval"`
}

// Pick — назначение worker'у пары plant/package.
type Pick struct {
	ID        int `json:"id" yaml:"id"`
	WorkerID  int `json:"worker_id" yaml:"worker_id"`
	PlantID   int `json:"plant_id" yaml:"plant_id"`
	PackageID int `json:"package_id" yaml:"package_id"`
}

// PickInput — тело запроса на добавление pick.
type PickInput struct {
	PlantID   int `json:"plant_id" yaml:"plant_id"`
	PackageID int `json:"package_id" yaml:"package_id"`
}
