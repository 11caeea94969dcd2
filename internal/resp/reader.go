package resp

import (
	"bufio"
)

// Reader is a pull parser over a byte stream, adapted from the teacher's
// RReader (redis/resp-read.go) and generalized to also read whole command
// arrays (arrays of bulk strings) the way a server's command dispatcher
// needs, plus a raw-bytes mode for consuming the RDB snapshot bulk that
// follows FULLRESYNC without a trailing CRLF.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r}
}

// ReadCommand reads one RESP array-of-bulk-strings frame, as the dispatcher
// requires (spec.md §4.1: "commands are always arrays of bulk strings").
// It returns io.EOF when the connection is closed between frames.
func (rd *Reader) ReadCommand() ([][]byte, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != TypeArray {
		// Skip the rest of the offending line so the next call starts at the
		// following frame instead of re-reading the same byte.
		rd.r.ReadSlice('\n')
		return nil, errNotArray
	}
	n, err := readIntLine(rd.r)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	args := make([][]byte, n)
	for i := int64(0); i < n; i++ {
		arg, err := rd.readBulkString()
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func (rd *Reader) readBulkString() ([]byte, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != TypeBulkString {
		return nil, errNotBulkString
	}
	n, err := readIntLine(rd.r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil // null bulk
	}
	data := make([]byte, n)
	if _, err := readFull(rd.r, data); err != nil {
		return nil, err
	}
	if _, err := rd.r.Discard(2); err != nil { // trailing \r\n
		return nil, err
	}
	return data, nil
}

// ReadReply reads one arbitrary RESP message (simple string, error,
// integer, bulk string, or array header) for use on the replica link where
// the dispatcher must tell +OK/+PONG/+FULLRESYNC apart from ordinary
// commands. For an array, the caller is responsible for reading n further
// messages.
func (rd *Reader) ReadReply() (typ Type, data []byte, err error) {
	typ, err = rd.r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	if typ == TypeBulkString {
		n, err := readIntLine(rd.r)
		if err != nil {
			return 0, nil, err
		}
		if n < 0 {
			return typ, nil, nil
		}
		data = make([]byte, n)
		if _, err := readFull(rd.r, data); err != nil {
			return 0, nil, err
		}
		if _, err := rd.r.Discard(2); err != nil {
			return 0, nil, err
		}
		return typ, data, nil
	}
	data, err = readLine(rd.r)
	return typ, data, err
}

// ReadRawBulk reads a bulk string header ($<len>\r\n) followed by exactly
// len bytes with NO trailing CRLF consumed — the mode the RDB snapshot
// bulk that follows +FULLRESYNC requires (spec.md §4.1).
func (rd *Reader) ReadRawBulk() ([]byte, error) {
	b, err := rd.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != TypeBulkString {
		return nil, errNotBulkString
	}
	n, err := readIntLine(rd.r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	data := make([]byte, n)
	if _, err := readFull(rd.r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Buffered reports the number of bytes currently buffered and not yet
// consumed, used by the replica link to measure raw command byte length
// (spec.md §4.8, §9 "byte-accurate replica offsets").
func (rd *Reader) Buffered() int { return rd.r.Buffered() }
