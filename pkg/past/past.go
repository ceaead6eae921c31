// Package past implements the node's persistent parameter storage:
// numbered, opaque units kept in two equal flash-style blocks.
package past

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Storage errors.
var (
	ErrNotFound  = errors.New("unit not found")
	ErrNoSpace   = errors.New("storage full")
	ErrCorrupt   = errors.New("storage corrupt")
	ErrUnitSize  = errors.New("unit too large")
	ErrBlockSize = errors.New("blocks too small or unequal")
)

// Block image constants. A blank flash cell reads 0xff, so the free
// area of a block is all 0xff and records are only ever programmed
// from erased space.
const (
	blockMagic  = 0x30747361
	magicSize   = 4
	headerSize  = 8
	erasedByte  = 0xff
	statusValid = 0xffff

	// invalidID marks erased space; real unit ids stay below it.
	invalidID = 0xffff
)

// Store is a two-block parameter storage. One block is active at a
// time; writes append a new record and invalidate the previous one,
// and a full block is compacted into the spare block. Units are
// identified by small integer ids and their contents are opaque.
//
// Store is owned by the foreground loop and is not safe for
// concurrent use.
type Store struct {
	// OnSync, when set, is called after every mutation so a backing
	// file can be flushed.
	OnSync func()

	blocks [2][]byte
	active int
	free   int
}

// New creates a Store over two equal-size blocks. The blocks are the
// storage: the caller keeps them alive (and persistent, if desired).
// Init or Format must be called before use.
func New(block0, block1 []byte) (*Store, error) {
	if len(block0) != len(block1) || len(block0) < magicSize+headerSize {
		return nil, ErrBlockSize
	}
	return &Store{blocks: [2][]byte{block0, block1}}, nil
}

// BlockSize returns the size of one block.
func (s *Store) BlockSize() int {
	return len(s.blocks[0])
}

// Blocks returns the raw block images for diagnostic dumping.
func (s *Store) Blocks() [2][]byte {
	return s.blocks
}

// Format erases both blocks and marks block 0 as the active one.
func (s *Store) Format() error {
	for _, blk := range s.blocks {
		erase(blk)
	}
	binary.LittleEndian.PutUint32(s.blocks[0], blockMagic)
	s.active, s.free = 0, magicSize
	s.sync()
	return nil
}

// Init validates the storage and locates the active block and its
// free space. It fails on unformatted or corrupt storage.
func (s *Store) Init() error {
	s.active = -1
	for i, blk := range s.blocks {
		if binary.LittleEndian.Uint32(blk) == blockMagic {
			s.active = i
			break
		}
	}
	if s.active < 0 {
		return ErrCorrupt
	}
	free, err := scan(s.blocks[s.active], nil)
	if err != nil {
		return err
	}
	s.free = free
	return nil
}

// ReadUnit returns the current contents of a unit. The returned slice
// aliases the block image and is valid until the next mutation.
func (s *Store) ReadUnit(id uint16) ([]byte, bool) {
	var data []byte
	scan(s.blocks[s.active], func(recID uint16, valid bool, rec []byte) {
		if valid && recID == id {
			data = rec
		}
	})
	if data == nil {
		return nil, false
	}
	return data, true
}

// WriteUnit stores data as the new contents of a unit, replacing any
// previous record. The write lands before the old record is
// invalidated, so a unit never silently disappears mid-update.
func (s *Store) WriteUnit(id uint16, data []byte) error {
	if id >= invalidID {
		return fmt.Errorf("invalid unit id %d", id)
	}
	if len(data) > s.BlockSize()-magicSize-headerSize {
		return ErrUnitSize
	}
	need := recordSize(len(data))
	if s.free+need > s.BlockSize() {
		if err := s.compact(id); err != nil {
			return err
		}
		if s.free+need > s.BlockSize() {
			return ErrNoSpace
		}
	}
	old := s.findOffset(id)
	s.program(id, data)
	if old >= 0 {
		s.invalidate(old)
	}
	s.sync()
	return nil
}

// EraseUnit removes a unit.
func (s *Store) EraseUnit(id uint16) error {
	off := s.findOffset(id)
	if off < 0 {
		return ErrNotFound
	}
	s.invalidate(off)
	s.sync()
	return nil
}

func (s *Store) sync() {
	if s.OnSync != nil {
		s.OnSync()
	}
}

// program appends a record to the active block. Caller checked space.
func (s *Store) program(id uint16, data []byte) {
	blk := s.blocks[s.active]
	binary.LittleEndian.PutUint16(blk[s.free:], id)
	binary.LittleEndian.PutUint16(blk[s.free+2:], statusValid)
	binary.LittleEndian.PutUint32(blk[s.free+4:], uint32(len(data)))
	copy(blk[s.free+headerSize:], data)
	s.free += recordSize(len(data))
}

// invalidate clears the status word of the record at off.
func (s *Store) invalidate(off int) {
	binary.LittleEndian.PutUint16(s.blocks[s.active][off+2:], 0)
}

// findOffset locates the valid record of a unit, or returns -1.
func (s *Store) findOffset(id uint16) int {
	found := -1
	off := magicSize
	scan(s.blocks[s.active], func(recID uint16, valid bool, rec []byte) {
		if valid && recID == id {
			found = off
		}
		off += recordSize(len(rec))
	})
	return found
}

// compact copies live records into the spare block and swaps blocks.
// skip excludes the unit about to be rewritten from the copy.
func (s *Store) compact(skip uint16) error {
	spare := 1 - s.active
	erase(s.blocks[spare])
	dst := &Store{blocks: s.blocks, active: spare, free: magicSize}
	var copyErr error
	scan(s.blocks[s.active], func(recID uint16, valid bool, rec []byte) {
		if !valid || recID == skip || copyErr != nil {
			return
		}
		if dst.free+recordSize(len(rec)) > len(s.blocks[spare]) {
			copyErr = ErrNoSpace
			return
		}
		dst.program(recID, rec)
	})
	if copyErr != nil {
		return copyErr
	}
	// the spare becomes active only once the copy is complete
	binary.LittleEndian.PutUint32(s.blocks[spare], blockMagic)
	erase(s.blocks[s.active][:magicSize])
	s.active, s.free = spare, dst.free
	return nil
}

// scan walks the records of a block, calling visit for each one, and
// returns the offset of the free area.
func scan(blk []byte, visit func(id uint16, valid bool, data []byte)) (int, error) {
	off := magicSize
	for off+headerSize <= len(blk) {
		id := binary.LittleEndian.Uint16(blk[off:])
		if id == invalidID {
			break
		}
		status := binary.LittleEndian.Uint16(blk[off+2:])
		length := int(binary.LittleEndian.Uint32(blk[off+4:]))
		if off+recordSize(length) > len(blk) {
			return 0, ErrCorrupt
		}
		if visit != nil {
			visit(id, status == statusValid, blk[off+headerSize:off+headerSize+length])
		}
		off += recordSize(length)
	}
	return off, nil
}

// recordSize returns the block space of a record, data padded to 4.
func recordSize(dataLen int) int {
	return headerSize + (dataLen+3)&^3
}

func erase(blk []byte) {
	for i := range blk {
		blk[i] = erasedByte
	}
}
