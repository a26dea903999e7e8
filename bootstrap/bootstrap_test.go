package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/registryd/component"
	"github.com/kbukum/registryd/config"
	"github.com/kbukum/registryd/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

func newTestConfig() *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        "test-app",
			Environment: "development",
			Version:     "0.0.1",
		},
	}
}

type fakeComponent struct {
	name     string
	startErr error
	health   component.HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(ctx context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return nil
}

func (f *fakeComponent) Health(ctx context.Context) component.Health {
	status := f.health
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: f.name, Status: status}
}

func newApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig(), WithLogger(logger.NewDefault("test")))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := newTestConfig()
	cfg.Name = ""
	if _, err := NewApp(cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestApp_StartupAndShutdownOrder(t *testing.T) {
	var events []string
	app := newApp(t)

	for _, name := range []string{"a", "b", "c"} {
		if err := app.RegisterComponent(&fakeComponent{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if err := app.startup(context.Background()); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if err := app.stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Fatalf("event order mismatch:\n got %v\nwant %v", events, want)
	}
}

func TestApp_StartupFailsOnComponentError(t *testing.T) {
	var events []string
	app := newApp(t)

	_ = app.RegisterComponent(&fakeComponent{name: "ok", events: &events})
	_ = app.RegisterComponent(&fakeComponent{name: "bad", startErr: errors.New("boom"), events: &events})

	if err := app.startup(context.Background()); err == nil {
		t.Fatal("expected startup error")
	}
}

func TestApp_HooksRunInPhases(t *testing.T) {
	var events []string
	app := newApp(t)

	app.OnStart(func(ctx context.Context) error {
		events = append(events, "onStart")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		events = append(events, "onReady")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		events = append(events, "onStop")
		return nil
	})

	if err := app.startup(context.Background()); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if err := app.stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	want := []string{"onStart", "configure", "onReady", "onStop"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Fatalf("hook order mismatch:\n got %v\nwant %v", events, want)
	}
}

func TestApp_ReadyCheckReportsUnhealthy(t *testing.T) {
	var events []string
	app := newApp(t)

	_ = app.RegisterComponent(&fakeComponent{name: "sick", health: component.StatusUnhealthy, events: &events})

	err := app.ReadyCheck(context.Background())
	if err == nil {
		t.Fatal("expected ready check error")
	}
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app := newApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
