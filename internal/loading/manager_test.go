package loading

import (
	"errors"
	"testing"
)

// collect closes the manager and returns every event the subscriber saw.
func collect(m *Manager, ch <-chan Event) []Event {
	m.Close()
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestSingleItemLifecycle(t *testing.T) {
	m := NewManager()
	ch := m.Subscribe()

	m.ItemStart("./models/astolfo.vrm")
	m.ItemEnd("./models/astolfo.vrm")

	events := collect(m, ch)
	want := []Event{
		{Kind: KindStart, URL: "./models/astolfo.vrm", Loaded: 0, Total: 1},
		{Kind: KindProgress, URL: "./models/astolfo.vrm", Loaded: 1, Total: 1},
		{Kind: KindComplete, URL: "./models/astolfo.vrm", Loaded: 1, Total: 1},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: got %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestSubItemsGrowTotal(t *testing.T) {
	m := NewManager()
	ch := m.Subscribe()

	m.ItemStart("avatar.vrm")
	m.ItemStart("avatar.vrm#image0")
	m.ItemStart("avatar.vrm#image1")
	m.ItemEnd("avatar.vrm#image0")
	m.ItemEnd("avatar.vrm#image1")
	m.ItemEnd("avatar.vrm")

	events := collect(m, ch)

	var starts, progress, complete int
	for _, ev := range events {
		switch ev.Kind {
		case KindStart:
			starts++
			if ev.Loaded != 0 || ev.Total != 1 {
				t.Errorf("start should report 0/1, got %d/%d", ev.Loaded, ev.Total)
			}
		case KindProgress:
			progress++
			if ev.Total != 3 {
				t.Errorf("progress total should be 3, got %d", ev.Total)
			}
		case KindComplete:
			complete++
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one start, got %d", starts)
	}
	if progress != 3 {
		t.Errorf("expected 3 progress events, got %d", progress)
	}
	if complete != 1 {
		t.Errorf("expected exactly one complete, got %d", complete)
	}
	if last := events[len(events)-1]; last.Kind != KindComplete {
		t.Errorf("complete should be the last event, got %v", last.Kind)
	}
}

func TestFailIsTerminal(t *testing.T) {
	m := NewManager()
	ch := m.Subscribe()

	boom := errors.New("asset not found")
	m.ItemStart("./models/missing.vrm")
	m.ItemError("./models/missing.vrm", boom)
	m.Fail(boom)
	m.Fail(errors.New("second failure"))
	m.ItemEnd("./models/missing.vrm")

	events := collect(m, ch)
	kinds := make([]Kind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	want := []Kind{KindStart, KindError, KindFailed}
	if len(kinds) != len(want) {
		t.Fatalf("got kinds %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
	if !errors.Is(events[2].Err, boom) {
		t.Errorf("failed event should carry the first error, got %v", events[2].Err)
	}
	if !m.Failed() {
		t.Error("manager should report failed")
	}
	if m.Loading() {
		t.Error("failed manager should not be loading")
	}
}

func TestBytesEvents(t *testing.T) {
	m := NewManager()
	ch := m.Subscribe()

	m.ItemStart("a.vrm")
	m.Bytes("a.vrm", 512, 1024)
	m.Bytes("a.vrm", 1024, 1024)

	events := collect(m, ch)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[2].Kind != KindBytes || events[2].BytesLoaded != 1024 || events[2].BytesTotal != 1024 {
		t.Errorf("unexpected bytes event %+v", events[2])
	}
	if loaded, total := m.Counts(); loaded != 0 || total != 1 {
		t.Errorf("bytes should not change item counts, got %d/%d", loaded, total)
	}
}

func TestMultipleSubscribersSeeSameOrder(t *testing.T) {
	m := NewManager()
	a := m.Subscribe()
	b := m.SubscribeBuffered(8)

	m.ItemStart("x")
	m.ItemEnd("x")
	m.Close()

	var ea, eb []Event
	for ev := range a {
		ea = append(ea, ev)
	}
	for ev := range b {
		eb = append(eb, ev)
	}
	if len(ea) != len(eb) {
		t.Fatalf("subscribers diverged: %d vs %d", len(ea), len(eb))
	}
	for i := range ea {
		if ea[i] != eb[i] {
			t.Errorf("event %d differs: %+v vs %+v", i, ea[i], eb[i])
		}
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	m := NewManager()
	m.Close()
	m.Close()

	ch := m.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("subscription after close should be closed")
	}
	// Calls after close are ignored
	m.ItemStart("late")
	if _, total := m.Counts(); total != 0 {
		t.Errorf("closed manager should ignore items, total=%d", total)
	}
}

func TestKindString(t *testing.T) {
	if KindComplete.String() != "complete" {
		t.Errorf("unexpected name %q", KindComplete.String())
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("unexpected name %q", Kind(42).String())
	}
}
