package snapio

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// SystemByteOrder returns the byte order of the machine hpost is running on.
// The solver writes its files in its own native order, so this is the right
// default whenever hpost runs where the solver ran.
func SystemByteOrder() binary.ByteOrder {
	b := [2]byte{}
	*(*uint16)(unsafe.Pointer(&b[0])) = uint16(0x0001)
	if b[0] == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ParseByteOrder converts "native", "little" or "big" to a byte order.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native":
		return SystemByteOrder(), nil
	case "little", "little-endian", "le":
		return binary.LittleEndian, nil
	case "big", "big-endian", "be":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("'%s' is not a valid byte order. The only "+
		"valid byte orders are 'native', 'little', and 'big'.", s)
}
