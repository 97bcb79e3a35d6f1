package component

import (
	"context"
	"errors"
	"testing"
)

// fakeService implements Component for testing.
type fakeService struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	events   *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start:"+f.name)
	}
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop:"+f.name)
	}
	return f.stopErr
}

func (f *fakeService) Health(context.Context) Health { return f.health }

func (f *fakeService) Describe() Description {
	return Description{Type: "http-service", Details: "tcp://" + f.name + ":80"}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeService{name: "users-api"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeService{name: "users-api"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeService{name: "users-api"})

	if got := r.Get("users-api"); got == nil || got.Name() != "users-api" {
		t.Errorf("expected users-api, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
	if n := len(r.All()); n != 1 {
		t.Errorf("expected 1 component, got %d", n)
	}
}

func TestRegistry_Lifecycle_Order(t *testing.T) {
	r := NewRegistry()
	var events []string
	for _, name := range []string{"users-api", "billing-api", "search-api"} {
		_ = r.Register(&fakeService{name: name, events: &events})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	// A second StartAll does not restart anything.
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{
		"start:users-api", "start:billing-api", "start:search-api",
		"stop:search-api", "stop:billing-api", "stop:users-api",
	}
	if len(events) != len(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], events[i])
		}
	}
}

func TestRegistry_StartAllError(t *testing.T) {
	r := NewRegistry()
	var events []string
	boom := errors.New("connection refused")
	_ = r.Register(&fakeService{name: "users-api", events: &events})
	_ = r.Register(&fakeService{name: "billing-api", startErr: boom, events: &events})
	_ = r.Register(&fakeService{name: "search-api", events: &events})

	err := r.StartAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected start to stop at the failure, got %v", events)
	}

	events = events[:0]
	_ = r.StopAll(context.Background())
	if len(events) != 1 || events[0] != "stop:users-api" {
		t.Errorf("expected only the started component to stop, got %v", events)
	}
}

func TestRegistry_StopAllJoinsErrors(t *testing.T) {
	r := NewRegistry()
	errA, errB := errors.New("a"), errors.New("b")
	_ = r.Register(&fakeService{name: "a", stopErr: errA})
	_ = r.Register(&fakeService{name: "b", stopErr: errB})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestRegistry_StopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	var events []string
	_ = r.Register(&fakeService{name: "users-api", events: &events})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stops for unstarted components, got %v", events)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeService{
		name:   "users-api",
		health: Health{Name: "users-api", Status: StatusHealthy, Message: "connected"},
	})
	_ = r.Register(&fakeService{
		name:   "billing-api",
		health: Health{Name: "billing-api", Status: StatusUnhealthy, Message: "connection refused"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected users-api healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected billing-api unhealthy, got %s", results[1].Status)
	}
}
