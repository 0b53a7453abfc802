package bufpool

import "testing"

func TestGetGrowsAndReuses(t *testing.T) {
	p := New(WriterSlots)

	buf := p.Get(SlotAssist, 128)
	if cap(buf) < 128 {
		t.Fatalf("expected capacity >= 128, got %d", cap(buf))
	}
	buf = append(buf, []byte("hello")...)
	p.Put(SlotAssist, buf)

	reused := p.Get(SlotAssist, 16)
	if len(reused) != 0 {
		t.Fatalf("expected zero length after Get, got %d", len(reused))
	}
	if cap(reused) < 128 {
		t.Fatalf("expected reused buffer to keep its capacity, got %d", cap(reused))
	}
}

func TestResetClearsLength(t *testing.T) {
	p := New(ReaderSlots)
	buf := p.Get(SlotDecodeWorking, 8)
	buf = append(buf, 1, 2, 3)
	p.Put(SlotDecodeWorking, buf)

	p.Reset()

	if len(p.bufs[SlotDecodeWorking]) != 0 {
		t.Fatalf("expected slot to be truncated after Reset")
	}
}

func TestSlots(t *testing.T) {
	p := New(3)
	if p.Slots() != 3 {
		t.Fatalf("expected 3 slots, got %d", p.Slots())
	}
}
