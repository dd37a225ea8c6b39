package main

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubStep struct {
	err    error
	called bool
}

func (s *stubStep) Shutdown(context.Context) error {
	s.called = true
	return s.err
}

func (s *stubStep) Stop(context.Context) error {
	s.called = true
	return s.err
}

func (s *stubStep) Close() error {
	s.called = true
	return s.err
}

func TestShutdownRunsEveryStepWhenServerFails(t *testing.T) {
	srv := &stubStep{err: errors.New("connections still active")}
	sched := &stubStep{}
	db := &stubStep{}

	err := shutdown(context.Background(), zerolog.Nop(), srv, sched, db)
	if !errors.Is(err, srv.err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if !sched.called || !db.called {
		t.Fatalf("scheduler stopped=%v database closed=%v", sched.called, db.called)
	}
}

func TestShutdownClean(t *testing.T) {
	srv, sched, db := &stubStep{}, &stubStep{err: errors.New("slow job")}, &stubStep{}

	if err := shutdown(context.Background(), zerolog.Nop(), srv, sched, db); err != nil {
		t.Fatalf("scheduler errors are logged, not returned: %v", err)
	}
	if !srv.called || !db.called {
		t.Fatal("expected every step to run")
	}
}
