package resp

import "strconv"

// EncodeCommand serializes args as a RESP array of bulk strings — the
// frame shape every command, and the replica handshake's PING/REPLCONF/
// PSYNC messages, use on the wire.
func EncodeCommand(args ...string) []byte {
	var buf buffer
	buf.writeByte('*')
	buf.write(strconv.AppendInt(nil, int64(len(args)), 10))
	buf.write(crlf)
	for _, a := range args {
		buf.writeByte('$')
		buf.write(strconv.AppendInt(nil, int64(len(a)), 10))
		buf.write(crlf)
		buf.write([]byte(a))
		buf.write(crlf)
	}
	return buf
}
