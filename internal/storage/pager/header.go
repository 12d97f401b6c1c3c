package pager

import "encoding/binary"

// The file begins with a fixed-size header region holding the persisted
// free-page stack, followed by the page data region.
//
//	[0:4]                         freed_count   uint32 LE
//	[4:4+4*TableMaxPages]         freed_stack   uint32 LE * TableMaxPages
//
// Only the first freed_count entries of freed_stack are meaningful; the
// rest are stale/zero. Pages start immediately after the header region.
const (
	freedCountOffset = 0
	freedStackOffset = freedCountOffset + 4
	freedStackBytes  = 4 * TableMaxPages

	// HeaderEnd is the byte offset at which page 0 begins.
	HeaderEnd = freedStackOffset + freedStackBytes // 4 + 4*400 = 1604
)

// fileHeader is the in-memory mirror of the header region.
type fileHeader struct {
	freedCount uint32
	freedStack [TableMaxPages]uint32
}

// marshal serializes the header into a HeaderEnd-byte buffer. The count
// and the stack are written as two logically distinct fields at fixed
// offsets (mirroring the source database's two separate writes) rather
// than laid out implicitly by struct order, so that a partial write only
// ever corrupts stack entries past freed_count, never the count field
// that is read first on reopen.
func (h *fileHeader) marshal() []byte {
	buf := make([]byte, HeaderEnd)
	binary.LittleEndian.PutUint32(buf[freedCountOffset:], h.freedCount)
	off := freedStackOffset
	for _, p := range h.freedStack {
		binary.LittleEndian.PutUint32(buf[off:], p)
		off += 4
	}
	return buf
}

func unmarshalHeader(buf []byte) fileHeader {
	var h fileHeader
	h.freedCount = binary.LittleEndian.Uint32(buf[freedCountOffset:])
	off := freedStackOffset
	for i := range h.freedStack {
		h.freedStack[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	return h
}
