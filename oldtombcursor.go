package tsfile

import "github.com/windrow/tsfile/internal/tomb"

// oldTombCursor walks the prior file group's tomb index in (uid,
// version) order and yields its records one at a time. Unlike
// oldRowCursor it applies no catalog filtering: a dropped table's old
// tombstones are forwarded same as any other, since a tombstone for a
// uid the catalog no longer knows about is still a true historical fact
// about that uid and costs nothing to keep.
type oldTombCursor struct {
	r *Reader

	blkArray []tomb.Blk
	blkIdx   int
	block    *tomb.Block
	recIdx   int

	pending *tomb.Record
	done    bool
}

func newOldTombCursor(r *Reader) (*oldTombCursor, error) {
	c := &oldTombCursor{}
	if r == nil || r.tombFD == nil {
		c.done = true
		return c, nil
	}
	c.r = r
	arr, err := r.ReadTombBlkArray()
	if err != nil {
		return nil, err
	}
	c.blkArray = arr
	if len(arr) == 0 {
		c.done = true
	}
	return c, nil
}

func (c *oldTombCursor) advanceBlk() error {
	for {
		if c.blkIdx >= len(c.blkArray) {
			c.done = true
			return nil
		}
		blk := c.blkArray[c.blkIdx]
		c.blkIdx++
		block, err := c.r.ReadTombBlock(blk)
		if err != nil {
			return err
		}
		c.block = block
		c.recIdx = 0
		if block.Len() > 0 {
			return nil
		}
	}
}

// Peek returns the next old tombstone without consuming it, or
// ok=false once the old index is exhausted.
func (c *oldTombCursor) Peek() (tomb.Record, bool, error) {
	if c.pending != nil {
		return *c.pending, true, nil
	}
	if c.done {
		return tomb.Record{}, false, nil
	}
	for c.block == nil || c.recIdx >= c.block.Len() {
		if err := c.advanceBlk(); err != nil {
			return tomb.Record{}, false, err
		}
		if c.done {
			return tomb.Record{}, false, nil
		}
	}
	rec := c.block.Get(c.recIdx)
	c.pending = &rec
	return rec, true, nil
}

// Advance consumes the record last returned by Peek.
func (c *oldTombCursor) Advance() {
	c.pending = nil
	c.recIdx++
}
