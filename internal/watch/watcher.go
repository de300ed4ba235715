package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

var (
	// ErrNoTargets — не выбрано ни одной сущности для наблюдения.
	ErrNoTargets = errors.New("no watch targets")

	// ErrNoSource — не задан источник данных.
	ErrNoSource = errors.New("no watch source")
)

// Source — откуда Watcher берёт текущие сущности. Реализуется cli.Client.
type Source interface {
	ListPlants(ctx context.Context) ([]domain.Plant, error)
	ListWorkers(ctx context.Context) ([]domain.Worker, error)
}

// Snapshot — результат одного опроса.
type Snapshot struct {
	At      time.Time             `json:"at" yaml:"at"`
	Plants  []domain.Plant        `json:"plants,omitempty" yaml:"plants,omitempty"`
	Workers []domain.Worker       `json:"workers,omitempty" yaml:"workers,omitempty"`
	Changes []domain.StatusChange `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Config — конфигурация Watcher.
type Config struct {
	Source   Source
	Targets  []domain.EntityKind // EntityPlant и/или EntityWorker
	Schedule cron.Schedule       // default: DefaultSchedule
	Sinks    []Sink
	Metrics  *telemetry.Metrics // опционально
	Logger   *slog.Logger

	// OnSnapshot вызывается после каждого успешного опроса.
	OnSnapshot func(Snapshot)

	// Now — источник времени (default: time.Now).
	Now func() time.Time
}

// Watcher опрашивает backend и находит смены состояний.
type Watcher struct {
	source     Source
	plants     bool
	workers    bool
	schedule   cron.Schedule
	sinks      []Sink
	metrics    *telemetry.Metrics
	logger     *slog.Logger
	onSnapshot func(Snapshot)
	now        func() time.Time

	// states — последнее наблюдённое состояние каждой сущности.
	states map[entityRef]string
}

// New создаёт Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Source == nil {
		return nil, ErrNoSource
	}

	w := &Watcher{
		source:     cfg.Source,
		schedule:   cfg.Schedule,
		sinks:      cfg.Sinks,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		onSnapshot: cfg.OnSnapshot,
		now:        cfg.Now,
		states:     make(map[entityRef]string),
	}

	for _, t := range cfg.Targets {
		switch t {
		case domain.EntityPlant:
			w.plants = true
		case domain.EntityWorker:
			w.workers = true
		default:
			return nil, fmt.Errorf("cannot watch %q: only plants and workers", t)
		}
	}
	if !w.plants && !w.workers {
		return nil, ErrNoTargets
	}

	if w.schedule == nil {
		schedule, err := ParseSchedule(DefaultSchedule)
		if err != nil {
			return nil, err
		}
		w.schedule = schedule
	}
	if w.logger == nil {
		w.logger = telemetry.Discard()
	}
	if w.now == nil {
		w.now = time.Now
	}

	return w, nil
}

// ParseTargets разбирает аргументы команды watch.
// Без аргументов наблюдаются и plants, и workers.
func ParseTargets(args []string) ([]domain.EntityKind, error) {
	if len(args) == 0 {
		return []domain.EntityKind{domain.EntityPlant, domain.EntityWorker}, nil
	}

	targets := make([]domain.EntityKind, 0, len(args))
	for _, arg := range args {
		kind, ok := domain.ParseEntityKind(arg)
		if !ok || (kind != domain.EntityPlant && kind != domain.EntityWorker) {
			return nil, fmt.Errorf("cannot watch %q: expected plants or workers", arg)
		}
		targets = append(targets, kind)
	}
	return targets, nil
}

// Run выполняет опрос сразу и затем по расписанию, пока ctx не отменён.
// Ошибки опроса логируются и не прерывают цикл.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if _, err := w.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("watch tick failed", "error", err)
		}

		now := w.now()
		timer := time.NewTimer(w.schedule.Next(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Tick выполняет один опрос и возвращает его результат.
//
// Изменения передаются всем Sink по очереди; ошибка Sink логируется
// и не мешает остальным.
func (w *Watcher) Tick(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{At: w.now()}
	if w.metrics != nil {
		w.metrics.WatchTicks.Inc()
	}

	if err := w.fetch(ctx, &snap); err != nil {
		if w.metrics != nil {
			w.metrics.WatchErrors.Inc()
		}
		return Snapshot{}, err
	}

	for _, p := range snap.Plants {
		if c, ok := w.observe(domain.EntityPlant, p.ID, p.Name, string(p.State()), snap.At); ok {
			snap.Changes = append(snap.Changes, c)
		}
	}
	for _, wk := range snap.Workers {
		if c, ok := w.observe(domain.EntityWorker, wk.ID, wk.Name, string(wk.Status), snap.At); ok {
			snap.Changes = append(snap.Changes, c)
		}
	}
	w.forgetMissing(snap)

	for _, c := range snap.Changes {
		w.deliver(ctx, c)
	}

	w.logger.Debug("watch tick completed",
		"plants", len(snap.Plants),
		"workers", len(snap.Workers),
		"changes", len(snap.Changes),
	)

	if w.onSnapshot != nil {
		w.onSnapshot(snap)
	}
	return snap, nil
}

func (w *Watcher) fetch(ctx context.Context, snap *Snapshot) error {
	if w.plants {
		plants, err := w.source.ListPlants(ctx)
		if err != nil {
			return fmt.Errorf("list plants: %w", err)
		}
		snap.Plants = plants
	}
	if w.workers {
		workers, err := w.source.ListWorkers(ctx)
		if err != nil {
			return fmt.Errorf("list workers: %w", err)
		}
		snap.Workers = workers
	}
	return nil
}

// observe запоминает состояние и возвращает изменение, если оно было.
func (w *Watcher) observe(kind domain.EntityKind, id int, name, state string, at time.Time) (domain.StatusChange, bool) {
	if w.metrics != nil {
		w.metrics.SetState(string(kind), id, name, state)
	}

	key := entityRef{kind: kind, id: id}
	prev, seen := w.states[key]
	w.states[key] = state

	if !seen || prev == state {
		return domain.StatusChange{}, false
	}
	return domain.NewStatusChange(kind, id, name, prev, state, at), true
}

// forgetMissing забывает сущности, которых больше нет в ответе backend'а,
// вместе с их сериями garden_entity_state.
func (w *Watcher) forgetMissing(snap Snapshot) {
	present := make(map[entityRef]struct{}, len(snap.Plants)+len(snap.Workers))
	for _, p := range snap.Plants {
		present[entityRef{kind: domain.EntityPlant, id: p.ID}] = struct{}{}
	}
	for _, wk := range snap.Workers {
		present[entityRef{kind: domain.EntityWorker, id: wk.ID}] = struct{}{}
	}

	for ref := range w.states {
		if _, ok := present[ref]; ok {
			continue
		}
		delete(w.states, ref)
		if w.metrics != nil {
			w.metrics.Forget(string(ref.kind), ref.id)
		}
	}
}

func (w *Watcher) deliver(ctx context.Context, c domain.StatusChange) {
	for _, sink := range w.sinks {
		if err := sink.Record(ctx, c); err != nil {
			w.logger.Error("failed to record status change",
				"entity", c.Entity,
				"id", c.EntityID,
				"event_id", c.ID,
				"error", err,
			)
		}
	}
}

// entityRef идентифицирует сущность среди опрашиваемых.
type entityRef struct {
	kind domain.EntityKind
	id   int
}
