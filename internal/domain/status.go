package domain

// PlantState — состояние plant для отображения и отслеживания переходов.
//
// Определяется парой полей collect/status:
//
//	collect=0            → IDLE  (сбор выключен, status не важен)
//	collect=1, status=0  → DEAD
//	collect=1, status=1  → ALIVE
type PlantState string

const (
	// PlantStateIdle — сбор данных выключен.
	PlantStateIdle PlantState = "IDLE"

	// PlantStateAlive — источник отвечает.
	PlantStateAlive PlantState = "ALIVE"

	// PlantStateDead — источник не отвечает.
	PlantStateDead PlantState = "DEAD"
)

// WorkerStatus — статус worker'а на стороне backend'а.
//
// Жизненный цикл:
//
//	STOPPED → RUNNING → STOPPED
//	                  ↘ FAILED (→ RUNNING после start)
type WorkerStatus string

const (
	// WorkerStatusRunning — worker собирает данные.
	WorkerStatusRunning WorkerStatus = "RUNNING"

	// WorkerStatusStopped — worker остановлен вручную.
	WorkerStatusStopped WorkerStatus = "STOPPED"

	// WorkerStatusFailed — worker остановился с ошибкой.
	WorkerStatusFailed WorkerStatus = "FAILED"
)

// EntityKind — тип сущности backend'а.
type EntityKind string

const (
	EntityPlant   EntityKind = "plant"
	EntityPackage EntityKind = "package"
	EntityWorker  EntityKind = "worker"
	EntityAction  EntityKind = "action"
)

// ParseEntityKind разбирает имя сущности, в том числе во множественном числе.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch s {
	case "plant", "plants":
		return EntityPlant, true
	case "package", "packages", "pkg":
		return EntityPackage, true
	case "worker", "workers":
		return EntityWorker, true
	case "action", "actions":
		return EntityAction, true
	default:
		return "", false
	}
}
