// Package bufpool provides the small fixed-length sequence of reusable
// byte buffers threaded through Reader and Writer codec calls, in place
// of a shared sync.Pool: one instance belongs to exactly one Reader or
// Writer and is never touched from another goroutine.
package bufpool

// Pool holds a fixed number of grow-on-demand buffers, indexed by slot.
// Buffers are cleared (length reset to 0, contents left alone) before
// reuse and never released back to the runtime between calls. Callers
// index slots by name via the Writer/Reader-owned constants below rather
// than by raw integer, so the slot a "working" buffer occupies can't
// silently collide with the "assist" buffer's slot.
type Pool struct {
	bufs [][]byte
}

// New returns a Pool with n empty, zero-capacity slots. n must be
// greater than the highest slot index the owner uses — WriterSlots (5)
// for a Writer, ReaderSlots (3) for a Reader.
func New(n int) *Pool {
	return &Pool{bufs: make([][]byte, n)}
}

// Get returns slot i's buffer, truncated to zero length but with its
// prior capacity intact, growing it if it is smaller than minCap.
func (p *Pool) Get(i int, minCap int) []byte {
	buf := p.bufs[i]
	if cap(buf) < minCap {
		buf = make([]byte, 0, minCap)
	}
	p.bufs[i] = buf[:0]
	return p.bufs[i]
}

// Put stores buf back into slot i so a later Get(i, ...) can reuse its
// backing array.
func (p *Pool) Put(i int, buf []byte) {
	p.bufs[i] = buf
}

// Reset truncates every slot to zero length without releasing capacity.
func (p *Pool) Reset() {
	for i, buf := range p.bufs {
		p.bufs[i] = buf[:0]
	}
}

// Slots returns the number of buffers the pool manages.
func (p *Pool) Slots() int {
	return len(p.bufs)
}

// Writer-owned slot indices: one working buffer per output stream the
// block codec produces, plus one assist buffer for scratch re-encoding.
const (
	SlotKeyData = iota
	SlotKeyMeta
	SlotColHeader
	SlotColData
	SlotAssist
	WriterSlots
)

// Reader-owned slot indices.
const (
	SlotDecodeWorking = iota
	SlotDecodeAssist
	SlotProjection
	ReaderSlots
)
