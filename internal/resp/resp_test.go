package resp

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/rsms/go-testutil"
)

func TestWriterTypes(t *testing.T) {
	assert := testutil.NewAssert(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SimpleString("OK")
	w.Error("ERR boom")
	w.Integer(42)
	w.BulkString([]byte("hi"))
	w.BulkString(nil)
	w.ArrayHeader(2)
	w.BulkStringS("a")
	w.BulkStringS("b")
	assert.Ok("flush", w.Flush() == nil)

	assert.Eq("serialized", buf.String(),
		"+OK\r\n-ERR boom\r\n:42\r\n$2\r\nhi\r\n$-1\r\n*2\r\n$1\r\na\r\n$1\r\nb\r\n")
}

func TestReadCommandRoundTrip(t *testing.T) {
	assert := testutil.NewAssert(t)

	raw := EncodeCommand("SET", "foo", "bar")
	br := bufio.NewReader(bytes.NewReader(raw))
	rr := NewReader(br)
	args, err := rr.ReadCommand()
	assert.Ok("read", err == nil)
	assert.Eq("argc", len(args), 3)
	assert.Eq("arg0", string(args[0]), "SET")
	assert.Eq("arg1", string(args[1]), "foo")
	assert.Eq("arg2", string(args[2]), "bar")
}

func TestReadCommandPipelined(t *testing.T) {
	assert := testutil.NewAssert(t)

	var raw []byte
	raw = append(raw, EncodeCommand("PING")...)
	raw = append(raw, EncodeCommand("ECHO", "x")...)
	br := bufio.NewReader(bytes.NewReader(raw))
	rr := NewReader(br)

	a, err := rr.ReadCommand()
	assert.Ok("read1", err == nil)
	assert.Eq("cmd1", string(a[0]), "PING")

	b, err := rr.ReadCommand()
	assert.Ok("read2", err == nil)
	assert.Eq("cmd2", string(b[0]), "ECHO")
}

func TestReadCommandProtocolError(t *testing.T) {
	assert := testutil.NewAssert(t)

	br := bufio.NewReader(bytes.NewReader([]byte("+OK\r\n")))
	rr := NewReader(br)
	_, err := rr.ReadCommand()
	assert.Ok("is protocol error", IsProtocolError(err))
}

func TestReadRawBulkNoTrailingCRLF(t *testing.T) {
	assert := testutil.NewAssert(t)

	payload := []byte("REDIS0011\xff\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	framed := append([]byte("$19\r\n"), payload...)
	br := bufio.NewReader(bytes.NewReader(framed))
	rr := NewReader(br)
	got, err := rr.ReadRawBulk()
	assert.Ok("read raw bulk", err == nil)
	assert.Eq("payload", string(got), string(payload))
}
