package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

// fakeSource отдаёт заранее заданные опросы по очереди.
type fakeSource struct {
	plants  [][]domain.Plant
	workers [][]domain.Worker
	err     error
	calls   int
}

func (s *fakeSource) ListPlants(context.Context) ([]domain.Plant, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := min(s.calls, len(s.plants)-1)
	s.calls++
	return s.plants[i], nil
}

func (s *fakeSource) ListWorkers(context.Context) ([]domain.Worker, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.workers) == 0 {
		return nil, nil
	}
	i := min(s.calls-1, len(s.workers)-1)
	return s.workers[max(i, 0)], nil
}

// recordingSink запоминает полученные изменения.
type recordingSink struct {
	changes []domain.StatusChange
	err     error
}

func (s *recordingSink) Record(_ context.Context, c domain.StatusChange) error {
	s.changes = append(s.changes, c)
	return s.err
}

func alive(id int, name string) domain.Plant {
	return domain.Plant{ID: id, Name: name, Collect: 1, Status: 1}
}

func dead(id int, name string) domain.Plant {
	return domain.Plant{ID: id, Name: name, Collect: 1, Status: 0}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Targets: []domain.EntityKind{domain.EntityPlant}}); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := New(Config{Source: &fakeSource{}}); !errors.Is(err, ErrNoTargets) {
		t.Errorf("expected ErrNoTargets, got %v", err)
	}
	if _, err := New(Config{Source: &fakeSource{}, Targets: []domain.EntityKind{domain.EntityAction}}); err == nil {
		t.Error("expected error for action target")
	}
}

func TestTick_FirstObservationIsNotAChange(t *testing.T) {
	src := &fakeSource{plants: [][]domain.Plant{{alive(1, "boiler"), dead(2, "pump")}}}
	sink := &recordingSink{}

	w, err := New(Config{Source: src, Targets: []domain.EntityKind{domain.EntityPlant}, Sinks: []Sink{sink}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	snap, err := w.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(snap.Plants) != 2 {
		t.Errorf("expected 2 plants, got %d", len(snap.Plants))
	}
	if len(snap.Changes) != 0 || len(sink.changes) != 0 {
		t.Errorf("expected no changes on first tick, got %v", snap.Changes)
	}
}

func TestTick_DetectsTransitions(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{plants: [][]domain.Plant{
		{alive(1, "boiler"), alive(2, "pump")},
		{dead(1, "boiler"), alive(2, "pump")},
		{dead(1, "boiler"), {ID: 2, Name: "pump", Collect: 0, Status: 1}},
	}}
	sink := &recordingSink{}

	w, err := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant},
		Sinks:   []Sink{sink},
		Now:     func() time.Time { return at },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for range 3 {
		if _, err := w.Tick(ctx); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	if len(sink.changes) != 2 {
		t.Fatalf("expected 2 changes, got %d: %+v", len(sink.changes), sink.changes)
	}

	first := sink.changes[0]
	if first.Entity != domain.EntityPlant || first.EntityID != 1 || first.From != "ALIVE" || first.To != "DEAD" {
		t.Errorf("unexpected first change: %+v", first)
	}
	if !first.ObservedAt.Equal(at) {
		t.Errorf("ObservedAt = %v, want %v", first.ObservedAt, at)
	}

	second := sink.changes[1]
	if second.EntityID != 2 || second.From != "ALIVE" || second.To != "IDLE" {
		t.Errorf("unexpected second change: %+v", second)
	}
}

func TestTick_WorkerTransitions(t *testing.T) {
	src := &fakeSource{
		plants: [][]domain.Plant{{}},
		workers: [][]domain.Worker{
			{{ID: 7, Name: "collector", Status: domain.WorkerStatusRunning}},
			{{ID: 7, Name: "collector", Status: domain.WorkerStatusFailed}},
		},
	}
	sink := &recordingSink{}

	w, err := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant, domain.EntityWorker},
		Sinks:   []Sink{sink},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	w.Tick(ctx)
	snap, err := w.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(snap.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(snap.Changes))
	}
	c := snap.Changes[0]
	if c.Entity != domain.EntityWorker || c.From != "RUNNING" || c.To != "FAILED" {
		t.Errorf("unexpected change: %+v", c)
	}
}

func TestTick_ReappearedEntityIsFirstObservation(t *testing.T) {
	src := &fakeSource{plants: [][]domain.Plant{
		{alive(1, "boiler")},
		{},
		{dead(1, "boiler")},
	}}
	sink := &recordingSink{}

	w, _ := New(Config{Source: src, Targets: []domain.EntityKind{domain.EntityPlant}, Sinks: []Sink{sink}})

	ctx := context.Background()
	for range 3 {
		w.Tick(ctx)
	}
	if len(sink.changes) != 0 {
		t.Errorf("expected no changes, got %+v", sink.changes)
	}
}

func TestTick_SinkErrorDoesNotStopOtherSinks(t *testing.T) {
	src := &fakeSource{plants: [][]domain.Plant{{alive(1, "a")}, {dead(1, "a")}}}
	failing := &recordingSink{err: errors.New("broker down")}
	ok := &recordingSink{}

	w, _ := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant},
		Sinks:   []Sink{failing, ok},
	})

	ctx := context.Background()
	w.Tick(ctx)
	if _, err := w.Tick(ctx); err != nil {
		t.Fatalf("sink error must not fail the tick: %v", err)
	}
	if len(failing.changes) != 1 || len(ok.changes) != 1 {
		t.Errorf("both sinks must receive the change: failing=%d ok=%d", len(failing.changes), len(ok.changes))
	}
}

func TestTick_SourceErrorCounted(t *testing.T) {
	m := telemetry.NewMetrics()
	src := &fakeSource{err: errors.New("connection refused")}

	w, _ := New(Config{Source: src, Targets: []domain.EntityKind{domain.EntityPlant}, Metrics: m})

	if _, err := w.Tick(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(m.WatchTicks); got != 1 {
		t.Errorf("WatchTicks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WatchErrors); got != 1 {
		t.Errorf("WatchErrors = %v, want 1", got)
	}
}

func TestTick_MetricsState(t *testing.T) {
	m := telemetry.NewMetrics()
	src := &fakeSource{plants: [][]domain.Plant{{alive(1, "a")}, {dead(1, "a")}}}

	w, _ := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant},
		Sinks:   []Sink{MetricsSink{Metrics: m}},
		Metrics: m,
	})

	ctx := context.Background()
	w.Tick(ctx)
	w.Tick(ctx)

	// Старое состояние снято, остаётся одна серия.
	if n := testutil.CollectAndCount(m.EntityState); n != 1 {
		t.Errorf("expected 1 entity state series, got %d", n)
	}
	if got := testutil.ToFloat64(m.EntityState.WithLabelValues("plant", "1", "a", "DEAD")); got != 1 {
		t.Errorf("DEAD state = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StatusChanges.WithLabelValues("plant", "DEAD")); got != 1 {
		t.Errorf("status changes = %v, want 1", got)
	}
}

func TestTick_MetricsForgetRenamedAndMissing(t *testing.T) {
	m := telemetry.NewMetrics()
	src := &fakeSource{plants: [][]domain.Plant{
		{alive(1, "rose"), dead(2, "cactus")},
		{alive(1, "rose-renamed")},
	}}

	w, _ := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant},
		Metrics: m,
	})

	ctx := context.Background()
	w.Tick(ctx)
	if n := testutil.CollectAndCount(m.EntityState); n != 2 {
		t.Fatalf("expected 2 entity state series after first tick, got %d", n)
	}
	w.Tick(ctx)

	// Переименованная сущность — одна серия, пропавшая — ни одной.
	if n := testutil.CollectAndCount(m.EntityState); n != 1 {
		t.Errorf("expected 1 entity state series, got %d", n)
	}
	if got := testutil.ToFloat64(m.EntityState.WithLabelValues("plant", "1", "rose-renamed", "ALIVE")); got != 1 {
		t.Errorf("renamed ALIVE state = %v, want 1", got)
	}
}

func TestTick_OnSnapshot(t *testing.T) {
	src := &fakeSource{plants: [][]domain.Plant{{alive(1, "a")}}}
	var got []Snapshot

	w, _ := New(Config{
		Source:     src,
		Targets:    []domain.EntityKind{domain.EntityPlant},
		OnSnapshot: func(s Snapshot) { got = append(got, s) },
	})

	w.Tick(context.Background())
	if len(got) != 1 || len(got[0].Plants) != 1 {
		t.Errorf("unexpected snapshots: %+v", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{plants: [][]domain.Plant{{alive(1, "a")}}}
	ticks := 0

	w, _ := New(Config{
		Source:  src,
		Targets: []domain.EntityKind{domain.EntityPlant},
		OnSnapshot: func(Snapshot) {
			ticks++
			cancel()
		},
	})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if ticks != 1 {
		t.Errorf("expected 1 tick, got %d", ticks)
	}
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		args    []string
		want    []domain.EntityKind
		wantErr bool
	}{
		{nil, []domain.EntityKind{domain.EntityPlant, domain.EntityWorker}, false},
		{[]string{"plants"}, []domain.EntityKind{domain.EntityPlant}, false},
		{[]string{"worker"}, []domain.EntityKind{domain.EntityWorker}, false},
		{[]string{"actions"}, nil, true},
		{[]string{"trees"}, nil, true},
	}

	for _, tt := range tests {
		got, err := ParseTargets(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTargets(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseTargets(%v) = %v, want %v", tt.args, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTargets(%v)[%d] = %v, want %v", tt.args, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseSchedule(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		expr    string
		want    time.Time
		wantErr bool
	}{
		{"", from.Add(10 * time.Second), false},
		{"@every 30s", from.Add(30 * time.Second), false},
		{"*/5 * * * *", from.Add(5 * time.Minute), false},
		{"@hourly", from.Add(time.Hour), false},
		{"every minute", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, err := ParseSchedule(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := s.Next(from); !got.Equal(tt.want) {
				t.Errorf("Next = %v, want %v", got, tt.want)
			}
		})
	}
}
