package pipeline_test

import (
	"testing"

	"github.com/ntoledo319/HELLDECK/pkg/domain/pipeline"
)

func TestMachine_HappyPath(t *testing.T) {
	m, err := pipeline.NewMachine("run-1", func() bool { return true })
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	steps := []struct {
		event string
		want  string
	}{
		{pipeline.EventVerify, pipeline.StateVerified},
		{pipeline.EventSweep, pipeline.StateSwept},
		{pipeline.EventSummarize, pipeline.StateSummarized},
		{pipeline.EventCalibrate, pipeline.StateCalibrated},
	}
	for _, s := range steps {
		if err := m.Transition(s.event); err != nil {
			t.Fatalf("%s: %v", s.event, err)
		}
		if m.Current() != s.want {
			t.Fatalf("after %s: got %s, want %s", s.event, m.Current(), s.want)
		}
	}
	if !m.IsFinal() {
		t.Error("calibrated is final")
	}
}

func TestMachine_FailingVerdictBlocksSweep(t *testing.T) {
	m, err := pipeline.NewMachine("run-2", func() bool { return false })
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if err := m.Transition(pipeline.EventVerify); err == nil {
		t.Fatal("expected guard to reject verify")
	}
	if err := m.Transition(pipeline.EventSweep); err == nil {
		t.Fatal("cannot sweep from idle")
	}
	if err := m.Transition(pipeline.EventFail); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if m.Current() != pipeline.StateFailed || !m.IsFinal() {
		t.Errorf("expected failed final state, got %s", m.Current())
	}
	if err := m.Transition(pipeline.EventCalibrate); err == nil {
		t.Error("failed runs accept no events")
	}
}
