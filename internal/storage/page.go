package storage

import "encoding/binary"

// SlottedPage is a fixed-size block organized as a 4-byte header
// (num_records, end_free), a slot directory growing from offset 4, and
// record payloads packed downward from the end of the block.
type SlottedPage struct {
	block      []byte
	blockID    BlockID
	numRecords uint16
	endFree    uint16
}

// NewSlottedPage wraps block (which must be exactly len(block) bytes, the
// page's configured block size) as the page for blockID. When isNew, the
// block is freshly initialized; otherwise the header is read from it.
func NewSlottedPage(block []byte, blockID BlockID, isNew bool) *SlottedPage {
	sp := &SlottedPage{block: block, blockID: blockID}
	if isNew {
		sp.numRecords = 0
		sp.endFree = uint16(len(block) - 1)
		sp.putHeader()
	} else {
		sp.numRecords, sp.endFree = sp.getSlot(0)
	}
	return sp
}

// Bytes returns the page's underlying block, for handing to a RecordStore.
func (sp *SlottedPage) Bytes() []byte { return sp.block }

// BlockID returns the block number this page was constructed for.
func (sp *SlottedPage) BlockID() BlockID { return sp.blockID }

func (sp *SlottedPage) blockSize() int { return len(sp.block) }

func (sp *SlottedPage) getSlot(id RecordID) (size, loc uint16) {
	off := 4 * int(id)
	return binary.LittleEndian.Uint16(sp.block[off : off+2]), binary.LittleEndian.Uint16(sp.block[off+2 : off+4])
}

func (sp *SlottedPage) putSlot(id RecordID, size, loc uint16) {
	off := 4 * int(id)
	binary.LittleEndian.PutUint16(sp.block[off:off+2], size)
	binary.LittleEndian.PutUint16(sp.block[off+2:off+4], loc)
}

func (sp *SlottedPage) putHeader() {
	sp.putSlot(0, sp.numRecords, sp.endFree)
}

// hasRoom reports whether an additional size bytes of payload still fit
// given the current slot directory size (size must already include the
// 4-byte slot entry for an add).
func (sp *SlottedPage) hasRoom(size uint16) bool {
	used := 4 * (int(sp.numRecords) + 1)
	available := int(sp.endFree) - used
	return available >= 0 && int(size) <= available
}

// Add appends data as a new record and returns its id.
func (sp *SlottedPage) Add(data []byte) (RecordID, error) {
	if !sp.hasRoom(uint16(len(data) + 4)) {
		return 0, &NoRoomError{BlockID: uint32(sp.blockID), Size: len(data)}
	}
	id := RecordID(sp.numRecords + 1)
	sp.numRecords++
	sp.endFree -= uint16(len(data))
	loc := sp.endFree + 1
	sp.putHeader()
	sp.putSlot(id, uint16(len(data)), loc)
	copy(sp.block[loc:int(loc)+len(data)], data)
	return id, nil
}

// Get returns the payload for record_id, or nil if it is a tombstone or
// out of range.
func (sp *SlottedPage) Get(id RecordID) []byte {
	if id < 1 || id > RecordID(sp.numRecords) {
		return nil
	}
	size, loc := sp.getSlot(id)
	if loc == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, sp.block[loc:int(loc)+int(size)])
	return out
}

// Ids returns the strictly increasing sequence of non-tombstone record ids.
func (sp *SlottedPage) Ids() []RecordID {
	ids := make([]RecordID, 0, sp.numRecords)
	for i := RecordID(1); i <= RecordID(sp.numRecords); i++ {
		_, loc := sp.getSlot(i)
		if loc != 0 {
			ids = append(ids, i)
		}
	}
	return ids
}

// slide shifts the payload region [end_free+1, start) by shift = end-start,
// fixing up every live record (other than skip) whose loc <= start.
func (sp *SlottedPage) slide(start, end uint16, skip RecordID) {
	shift := int(end) - int(start)
	if shift == 0 {
		return
	}
	lo := int(sp.endFree) + 1
	bytes := int(start) - lo
	if bytes > 0 {
		to := lo + shift
		copy(sp.block[to:to+bytes], sp.block[lo:lo+bytes])
	}
	for _, id := range sp.Ids() {
		if id == skip {
			continue
		}
		size, loc := sp.getSlot(id)
		if loc <= start {
			sp.putSlot(id, size, uint16(int(loc)+shift))
		}
	}
	sp.endFree = uint16(int(sp.endFree) + shift)
	sp.putHeader()
}

// Put replaces the payload for record_id, sliding neighboring records to
// keep the payload area contiguous. Fails with NoRoomError if the record
// grows and there is insufficient free space.
func (sp *SlottedPage) Put(id RecordID, data []byte) error {
	oldSize, oldLoc := sp.getSlot(id)
	if oldLoc == 0 {
		return &NoRoomError{BlockID: uint32(sp.blockID), Size: len(data)}
	}
	newSize := uint16(len(data))
	switch {
	case newSize == oldSize:
		copy(sp.block[oldLoc:int(oldLoc)+int(newSize)], data)
	case newSize < oldSize:
		shift := oldSize - newSize
		sp.slide(oldLoc, oldLoc+shift, id)
		newLoc := oldLoc + shift
		copy(sp.block[newLoc:int(newLoc)+int(newSize)], data)
		sp.putSlot(id, newSize, newLoc)
		sp.putHeader()
	default:
		extra := newSize - oldSize
		if !sp.hasRoom(extra) {
			return &NoRoomError{BlockID: uint32(sp.blockID), Size: len(data)}
		}
		sp.slide(oldLoc, oldLoc-extra, id)
		newLoc := oldLoc - extra
		copy(sp.block[newLoc:int(newLoc)+int(newSize)], data)
		sp.putSlot(id, newSize, newLoc)
		sp.putHeader()
	}
	return nil
}

// Del tombstones record_id and compacts the freed space.
func (sp *SlottedPage) Del(id RecordID) {
	size, loc := sp.getSlot(id)
	if loc == 0 {
		return
	}
	sp.putSlot(id, 0, 0)
	sp.slide(loc, loc+size, 0)
}
