package nes

// cursor walks an input buffer front to back. Each decoder asks it for the
// next n bytes and gets a copy, so a Rom never aliases the caller's slice.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// remaining returns how many unread bytes are left.
func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

// take copies the next n bytes and advances. When fewer than n bytes remain
// it returns a *ParseError wrapping err and leaves the cursor untouched.
func (c *cursor) take(s Section, n int, err error) ([]byte, error) {
	if c.remaining() < n {
		return nil, &ParseError{Section: s, Offset: c.off, Need: n, Have: c.remaining(), Err: err}
	}
	b := make([]byte, n)
	copy(b, c.data[c.off:c.off+n])
	c.off += n
	return b, nil
}

// takeInto fills dst from the next len(dst) bytes.
func (c *cursor) takeInto(s Section, dst []byte, err error) error {
	n := len(dst)
	if c.remaining() < n {
		return &ParseError{Section: s, Offset: c.off, Need: n, Have: c.remaining(), Err: err}
	}
	copy(dst, c.data[c.off:c.off+n])
	c.off += n
	return nil
}

// rest copies at most limit of the remaining bytes. It never fails.
func (c *cursor) rest(limit int) []byte {
	n := min(c.remaining(), limit)
	b := make([]byte, n)
	copy(b, c.data[c.off:c.off+n])
	c.off += n
	return b
}
