package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/wbrown/relcore/value"
)

// Key layout, simplified from the teacher's key_encoder_binary.go: instead
// of 20/32-byte content hashes, EntityID/AttrID here are plain int64/string,
// so every key component is self-delimiting (a one-byte type tag, plus a
// length prefix for variable-width payloads) rather than fixed-width. This
// keeps prefix scans exact: a prefix built from N columns is always a true
// byte-prefix of a key encoding N-or-more columns, never an accidental
// partial match of a longer value in the same column.

const (
	idxAEV byte = 1
	idxEAV byte = 2
	idxAVE byte = 3
	idxVAE byte = 4
)

const (
	tagNil byte = iota
	tagBool
	tagInt64
	tagFloat64
	tagString
	tagEntityID
	tagTime
)

func encodeValue(buf []byte, v value.Value) []byte {
	switch tv := v.(type) {
	case nil:
		return append(buf, tagNil)
	case bool:
		b := byte(0)
		if tv {
			b = 1
		}
		return append(buf, tagBool, b)
	case int64:
		buf = append(buf, tagInt64)
		return appendUint64(buf, uint64(tv))
	case float64:
		buf = append(buf, tagFloat64)
		return appendUint64(buf, math.Float64bits(tv))
	case string:
		buf = append(buf, tagString)
		return appendString(buf, tv)
	case value.EntityID:
		buf = append(buf, tagEntityID)
		return appendUint64(buf, uint64(int64(tv)))
	case time.Time:
		buf = append(buf, tagTime)
		return appendUint64(buf, uint64(tv.UTC().UnixNano()))
	default:
		panic(fmt.Sprintf("storage: unsupported value kind %T", v))
	}
}

func appendUint64(buf []byte, u uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], u)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(s)))
	buf = append(buf, tmp[:]...)
	return append(buf, s...)
}

// decodeValue reads one self-delimited value off the front of b, returning
// the value and the number of bytes consumed.
func decodeValue(b []byte) (value.Value, int, error) {
	if len(b) < 1 {
		return nil, 0, fmt.Errorf("storage: truncated key, no tag byte")
	}
	tag := b[0]
	rest := b[1:]
	switch tag {
	case tagNil:
		return nil, 1, nil
	case tagBool:
		if len(rest) < 1 {
			return nil, 0, fmt.Errorf("storage: truncated bool")
		}
		return rest[0] != 0, 2, nil
	case tagInt64:
		if len(rest) < 8 {
			return nil, 0, fmt.Errorf("storage: truncated int64")
		}
		return int64(binary.BigEndian.Uint64(rest[:8])), 9, nil
	case tagFloat64:
		if len(rest) < 8 {
			return nil, 0, fmt.Errorf("storage: truncated float64")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(rest[:8])), 9, nil
	case tagString:
		if len(rest) < 4 {
			return nil, 0, fmt.Errorf("storage: truncated string length")
		}
		n := int(binary.BigEndian.Uint32(rest[:4]))
		if len(rest) < 4+n {
			return nil, 0, fmt.Errorf("storage: truncated string data")
		}
		return string(rest[4 : 4+n]), 5 + n, nil
	case tagEntityID:
		if len(rest) < 8 {
			return nil, 0, fmt.Errorf("storage: truncated EntityID")
		}
		return value.EntityID(int64(binary.BigEndian.Uint64(rest[:8]))), 9, nil
	case tagTime:
		if len(rest) < 8 {
			return nil, 0, fmt.Errorf("storage: truncated time")
		}
		ns := int64(binary.BigEndian.Uint64(rest[:8]))
		return time.Unix(0, ns).UTC(), 9, nil
	default:
		return nil, 0, fmt.Errorf("storage: unknown value tag %d", tag)
	}
}

func encodeAttr(buf []byte, attr value.AttrID) []byte {
	return appendString(buf, string(attr))
}

func encodeVld(buf []byte, vld value.Validity) []byte {
	return appendUint64(buf, uint64(int64(vld)))
}

// aevPrefix / aevKey implement the AEV index (scan by attribute).
func aevPrefix(attr value.AttrID, vld value.Validity) []byte {
	buf := []byte{idxAEV}
	buf = encodeAttr(buf, attr)
	buf = encodeVld(buf, vld)
	return buf
}

func aevKey(attr value.AttrID, vld value.Validity, e value.EntityID, v value.Value) []byte {
	buf := aevPrefix(attr, vld)
	buf = encodeValue(buf, e)
	buf = encodeValue(buf, v)
	return buf
}

// eavPrefix / eavKey implement the EAV index (scan by entity+attribute).
func eavPrefix(e value.EntityID, attr value.AttrID, vld value.Validity) []byte {
	buf := []byte{idxEAV}
	buf = encodeValue(buf, e)
	buf = encodeAttr(buf, attr)
	buf = encodeVld(buf, vld)
	return buf
}

func eavKey(e value.EntityID, attr value.AttrID, vld value.Validity, v value.Value) []byte {
	buf := eavPrefix(e, attr, vld)
	buf = encodeValue(buf, v)
	return buf
}

// avePrefix / aveKey implement the AVE index (scan by attribute+value).
func avePrefix(attr value.AttrID, v value.Value, vld value.Validity) []byte {
	buf := []byte{idxAVE}
	buf = encodeAttr(buf, attr)
	buf = encodeValue(buf, v)
	buf = encodeVld(buf, vld)
	return buf
}

func aveKey(attr value.AttrID, v value.Value, vld value.Validity, e value.EntityID) []byte {
	buf := avePrefix(attr, v, vld)
	buf = encodeValue(buf, e)
	return buf
}

// vaePrefix / vaeKey implement the VAE reverse-reference index (scan by
// referenced entity+attribute).
func vaePrefix(vEid value.EntityID, attr value.AttrID, vld value.Validity) []byte {
	buf := []byte{idxVAE}
	buf = encodeValue(buf, vEid)
	buf = encodeAttr(buf, attr)
	buf = encodeVld(buf, vld)
	return buf
}

func vaeKey(vEid value.EntityID, attr value.AttrID, vld value.Validity, e value.EntityID) []byte {
	buf := vaePrefix(vEid, attr, vld)
	buf = encodeValue(buf, e)
	return buf
}

// tempStorePrefix / tempStoreKey implement the TempStore key layout: store
// id, then every column of the tuple self-delimited, then a trailing
// 4-byte epoch. Decoding walks columns off the front until exactly 4 bytes
// remain, which are the epoch.
func tempStorePrefix(id int64) []byte {
	buf := make([]byte, 0, 8)
	return appendUint64(buf, uint64(id))
}

func tempStoreTuplePrefix(id int64, cols value.Tuple) []byte {
	buf := tempStorePrefix(id)
	for _, c := range cols {
		buf = encodeValue(buf, c)
	}
	return buf
}

func tempStoreKey(id int64, t value.Tuple, epoch uint32) []byte {
	buf := tempStoreTuplePrefix(id, t)
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], epoch)
	return append(buf, tmp[:]...)
}

// decodeTempStoreKey splits a full temp-store key (with the store-id prefix
// already stripped) back into its tuple columns and trailing epoch.
func decodeTempStoreKey(rest []byte) (value.Tuple, uint32, error) {
	var cols value.Tuple
	for len(rest) > 4 {
		v, n, err := decodeValue(rest)
		if err != nil {
			return nil, 0, err
		}
		cols = append(cols, v)
		rest = rest[n:]
	}
	if len(rest) != 4 {
		return nil, 0, fmt.Errorf("storage: malformed temp-store key, %d trailing bytes", len(rest))
	}
	epoch := binary.BigEndian.Uint32(rest)
	return cols, epoch, nil
}
