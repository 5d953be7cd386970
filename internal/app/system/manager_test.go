package system

import (
	"context"
	"fmt"
	"testing"
)

type recordingService struct {
	name    string
	failOn  bool
	started []string
	stopped []string
	log     *[]string
}

func (r *recordingService) Name() string { return r.name }

func (r *recordingService) Start(context.Context) error {
	if r.failOn {
		return fmt.Errorf("boom")
	}
	*r.log = append(*r.log, "start:"+r.name)
	return nil
}

func (r *recordingService) Stop(context.Context) error {
	*r.log = append(*r.log, "stop:"+r.name)
	return nil
}

func TestManagerStartStopOrder(t *testing.T) {
	var log []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordingService{name: name, log: &log}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(log) != len(want) {
		t.Fatalf("log = %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestManagerStartFailureUnwindsStartedServices(t *testing.T) {
	var log []string
	m := NewManager()
	_ = m.Register(&recordingService{name: "a", log: &log})
	_ = m.Register(&recordingService{name: "b", failOn: true, log: &log})

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	if len(log) != 2 || log[1] != "stop:a" {
		t.Fatalf("log = %v", log)
	}
}

func TestManagerRejectsDuplicateNames(t *testing.T) {
	m := NewManager()
	if err := m.Register(NoopService{ServiceName: "dup"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "dup"}); err == nil {
		t.Fatal("expected duplicate rejection")
	}
}

func TestManagerRejectsRegistrationAfterStart(t *testing.T) {
	m := NewManager()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "late"}); err == nil {
		t.Fatal("expected registration rejection after start")
	}
}
