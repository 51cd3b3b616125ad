package game

import "testing"

func TestHistoryThreefoldRepetition(t *testing.T) {
	h := NewHistory()

	h.Push(1)
	h.Push(2)
	h.Push(1)
	if h.IsThreefoldRepetition() {
		t.Fatal("position occurring twice should not be a repetition draw")
	}

	h.Push(3)
	h.Push(1)
	if !h.IsThreefoldRepetition() {
		t.Fatal("position occurring three times should be a repetition draw")
	}
}

func TestHistoryPopUndoesThreefold(t *testing.T) {
	h := NewHistory()
	h.Push(1)
	h.Push(2)
	h.Push(1)
	h.Push(3)
	h.Push(1)
	if !h.IsThreefoldRepetition() {
		t.Fatal("expected a repetition draw after the third occurrence")
	}

	h.Pop()
	if h.IsThreefoldRepetition() {
		t.Fatal("popping the third occurrence should undo the repetition draw")
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.Push(1)
	h.Push(2)

	h.Reset([]uint64{5, 5, 5})
	if !h.IsThreefoldRepetition() {
		t.Fatal("Reset should replay the given hashes, detecting a repetition among them")
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 recorded positions after Reset, got %d", h.Len())
	}
}

func TestHistoryCount(t *testing.T) {
	h := NewHistory()
	h.Push(1)
	h.Push(2)
	h.Push(1)

	if got := h.Count(1); got != 2 {
		t.Errorf("Count(1) = %d, want 2", got)
	}
	if got := h.Count(9); got != 0 {
		t.Errorf("Count(9) = %d, want 0", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Push(1)
	h.Push(1)
	h.Push(1)
	if !h.IsThreefoldRepetition() {
		t.Fatal("expected a repetition draw before Clear")
	}

	h.Clear()
	if h.IsThreefoldRepetition() {
		t.Error("expected Clear to remove the repetition draw")
	}
	if h.Len() != 0 {
		t.Errorf("expected 0 recorded positions after Clear, got %d", h.Len())
	}
}
