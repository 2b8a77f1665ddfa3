package heaptable

import (
	"encoding/binary"
)

// marshal encodes row in the declared column order: INT/BOOLEAN as a
// 4-byte little-endian two's-complement int, TEXT as a u16-LE length
// followed by the raw bytes. blockSize bounds the running offset the same
// way the C++ original bounds it against BLOCK_SZ: once len(buf)+4 exceeds
// blockSize-4 (room for one more 4-byte INT plus a 4-byte margin), it
// aborts with SchemaError("row too big") rather than ever producing a
// buffer a page could not hold.
func marshal(table string, columns []string, attrs map[string]ColumnAttribute, row Row, blockSize int) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for _, col := range columns {
		v, ok := row[col]
		if !ok {
			return nil, &SchemaError{Table: table, Column: col, Message: "unsupported NULL/default"}
		}
		attr := attrs[col]
		switch attr {
		case AttrInt, AttrBoolean:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(v.N))
			buf = append(buf, b[:]...)
		case AttrText:
			if len(v.S) > 65535 {
				return nil, &SchemaError{Table: table, Column: col, Message: "row too big"}
			}
			var lb [2]byte
			binary.LittleEndian.PutUint16(lb[:], uint16(len(v.S)))
			buf = append(buf, lb[:]...)
			buf = append(buf, v.S...)
		}
		if len(buf)+4 > blockSize-4 {
			return nil, &SchemaError{Table: table, Message: "row too big"}
		}
	}
	return buf, nil
}

// unmarshal is the exact inverse of marshal; it trusts column metadata and
// does not check any field length against len(data).
func unmarshal(columns []string, attrs map[string]ColumnAttribute, data []byte) Row {
	row := make(Row, len(columns))
	off := 0
	for _, col := range columns {
		attr := attrs[col]
		switch attr {
		case AttrInt:
			n := int32(binary.LittleEndian.Uint32(data[off : off+4]))
			row[col] = NewInt(n)
			off += 4
		case AttrBoolean:
			n := int32(binary.LittleEndian.Uint32(data[off : off+4]))
			row[col] = NewBool(n != 0)
			off += 4
		case AttrText:
			size := int(binary.LittleEndian.Uint16(data[off : off+2]))
			off += 2
			row[col] = NewText(string(data[off : off+size]))
			off += size
		}
	}
	return row
}
