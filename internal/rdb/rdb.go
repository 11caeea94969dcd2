// Package rdb implements spec.md's C4: reading (and, for non-empty stores,
// writing) the RDB snapshot format exchanged during FULLRESYNC. Only the
// opcode subset spec.md §4.4 names is supported — this is a server that
// speaks the wire protocol, not a full RDB implementation. Grounded on the
// opcode-driven parse loop of the df2redis replica RDB parser, trimmed to
// the classic Redis opcode set (no Dragonfly journal/compression opcodes)
// and to string-only values, since spec.md §4.4 only specifies reading —
// never writing — list/stream/zset keys.
package rdb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/rsms/gored/internal/store"
)

const (
	opAux       = 0xFA
	opSelectDB  = 0xFE
	opResizeDB  = 0xFB
	opExpireMS  = 0xFC
	opExpireSec = 0xFD
	opEOF       = 0xFF

	valString = 0x00

	magic = "REDIS0011"
)

// EmptySnapshot is the literal empty-database payload spec.md §6 requires
// a FULLRESYNC to send when the store holds nothing.
var EmptySnapshot = []byte(magic +
	"\xfa\x09redis-ver\x057.2.0" +
	"\xfa\x0aredis-bits\xc0\x40" +
	"\xfa\x05ctime\xc2\x6d\x08\xbc\x65" +
	"\xfa\x08used-mem\xc2\xb0\xc4\x10\x00" +
	"\xfa\x08aof-base\xc0\x00" +
	"\xff\xf0\x6e\x3b\xfe\xc0\xff\x5a\xa2")

// Load parses an RDB payload and installs every string key it contains
// into st. Non-string opcodes are never emitted by WriteSnapshot (see below), so
// Load only needs to understand the string value type; any other value
// type byte is a protocol error.
func Load(data []byte, st *store.Store) error {
	r := bytes.NewReader(data)
	hdr := make([]byte, 9)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return fmt.Errorf("read rdb header: %w", err)
	}
	if string(hdr) != magic {
		return fmt.Errorf("bad rdb magic %q", hdr)
	}

	var expiry time.Time
	for {
		op, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch op {
		case opEOF:
			// 8-byte CRC64 checksum follows; not verified (spec.md never
			// requires a checksum to be produced or checked for our writer).
			return nil
		case opAux:
			if _, err := readString(r); err != nil {
				return fmt.Errorf("read aux key: %w", err)
			}
			if _, err := readString(r); err != nil {
				return fmt.Errorf("read aux value: %w", err)
			}
		case opSelectDB:
			if _, _, err := readLength(r); err != nil {
				return fmt.Errorf("read selectdb index: %w", err)
			}
		case opResizeDB:
			if _, _, err := readLength(r); err != nil {
				return fmt.Errorf("read hash table size: %w", err)
			}
			if _, _, err := readLength(r); err != nil {
				return fmt.Errorf("read expire table size: %w", err)
			}
		case opExpireMS:
			var buf [8]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return fmt.Errorf("read expiretime ms: %w", err)
			}
			ms := int64(binary.LittleEndian.Uint64(buf[:]))
			expiry = time.UnixMilli(ms)
		case opExpireSec:
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return fmt.Errorf("read expiretime sec: %w", err)
			}
			sec := int64(binary.LittleEndian.Uint32(buf[:]))
			expiry = time.Unix(sec, 0)
		case valString:
			key, err := readString(r)
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			val, err := readString(r)
			if err != nil {
				return fmt.Errorf("read value: %w", err)
			}
			st.SetString(string(key), val, expiry)
			expiry = time.Time{}
		default:
			return fmt.Errorf("unsupported rdb opcode 0x%02x", op)
		}
	}
}

// WriteSnapshot serializes every live string key in st as an RDB payload.
// An empty store serializes to the literal EmptySnapshot bytes spec.md §6
// requires.
func WriteSnapshot(st *store.Store) []byte {
	entries := st.StringEntries()
	if len(entries) == 0 {
		return EmptySnapshot
	}
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(opSelectDB)
	writeLength(&buf, 0)
	buf.WriteByte(opResizeDB)
	writeLength(&buf, uint64(len(entries)))
	writeLength(&buf, 0)
	for _, e := range entries {
		if !e.Expiry.IsZero() {
			buf.WriteByte(opExpireMS)
			var tbuf [8]byte
			binary.LittleEndian.PutUint64(tbuf[:], uint64(e.Expiry.UnixMilli()))
			buf.Write(tbuf[:])
		}
		buf.WriteByte(valString)
		writeString(&buf, []byte(e.Key))
		writeString(&buf, e.Value)
	}
	buf.WriteByte(opEOF)
	var crc [8]byte // checksum not computed; spec.md does not require verification
	buf.Write(crc[:])
	return buf.Bytes()
}

func writeLength(buf *bytes.Buffer, n uint64) {
	switch {
	case n < 1<<6:
		buf.WriteByte(byte(n))
	case n < 1<<14:
		buf.WriteByte(0x40 | byte(n>>8))
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(0x80)
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(n))
		buf.Write(b[:])
	}
}

func writeString(buf *bytes.Buffer, data []byte) {
	writeLength(buf, uint64(len(data)))
	buf.Write(data)
}

func readLength(r *bytes.Reader) (uint64, bool, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, false, err
	}
	switch first >> 6 {
	case 0:
		return uint64(first & 0x3f), false, nil
	case 1:
		next, err := r.ReadByte()
		if err != nil {
			return 0, false, err
		}
		return (uint64(first&0x3f) << 8) | uint64(next), false, nil
	case 2:
		if first == 0x80 {
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return 0, false, err
			}
			return uint64(binary.BigEndian.Uint32(buf[:])), false, nil
		}
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, false, err
		}
		return binary.BigEndian.Uint64(buf[:]), false, nil
	default: // 3: special encoding (integer strings), handled by readString
		return uint64(first & 0x3f), true, nil
	}
}

// readString reads a length-prefixed string, including the three special
// integer encodings (int8/int16/int32) RDB uses in place of a literal
// byte length when the value is a small integer.
func readString(r *bytes.Reader) ([]byte, error) {
	n, special, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if special {
		switch n {
		case 0: // 8-bit int
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			return []byte(fmt.Sprintf("%d", int8(b))), nil
		case 1: // 16-bit int
			var buf [2]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, err
			}
			return []byte(fmt.Sprintf("%d", int16(binary.LittleEndian.Uint16(buf[:])))), nil
		case 2: // 32-bit int
			var buf [4]byte
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, err
			}
			return []byte(fmt.Sprintf("%d", int32(binary.LittleEndian.Uint32(buf[:])))), nil
		default:
			return nil, fmt.Errorf("unsupported rdb special string encoding %d (LZF compression is not implemented)", n)
		}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
