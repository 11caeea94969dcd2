package replication

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rsms/gored/internal/logx"
	"github.com/rsms/gored/internal/rdb"
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/store"
)

// Apply executes one already-parsed command against the local store. The
// server wires this to the same dispatch table a normal client uses, minus
// reply-writing (a replica link never talks back except REPLCONF ACK).
type Apply func(name string, args [][]byte)

// RunReplica performs the PING/REPLCONF/PSYNC handshake against the
// configured master, ingests the RDB snapshot, then streams and applies
// commands forever, reconnecting on error. Grounded on the handshake
// sequence in the GoRedis reference replica client, adapted to our own
// resp codec and byte-accurate offset accounting (spec.md §4.8).
func RunReplica(m *Manager, st *store.Store, listenPort int, apply Apply, log *logx.Logger) {
	host, port := m.MasterAddr()
	addr := net.JoinHostPort(host, port)
	for {
		if err := replicateOnce(m, st, addr, listenPort, apply, log); err != nil {
			logx.Trace(log, "replica link to %s failed: %v", addr, err)
		}
		time.Sleep(time.Second)
	}
}

func replicateOnce(m *Manager, st *store.Store, addr string, listenPort int, apply Apply, log *logx.Logger) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial master: %w", err)
	}
	defer conn.Close()

	cr := resp.NewCountingReader(conn)
	br := bufio.NewReader(cr)
	rr := resp.NewReader(br)
	rw := resp.NewWriter(conn)

	if err := handshake(rr, rw, listenPort); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	snapshot, err := rr.ReadRawBulk()
	if err != nil {
		return fmt.Errorf("read rdb snapshot: %w", err)
	}
	if err := rdb.Load(snapshot, st); err != nil {
		logx.Trace(log, "rdb load: %v", err)
	}

	for {
		before := cr.N() - int64(rr.Buffered())
		args, err := rr.ReadCommand()
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		after := cr.N() - int64(rr.Buffered())
		n := after - before

		if len(args) == 0 {
			continue
		}
		name := string(args[0])
		switch name {
		case "PING":
			// keepalive from master, no reply required
		case "REPLCONF":
			if len(args) >= 2 && equalFold(string(args[1]), "GETACK") {
				offset := m.Offset() + n
				ackCmd := resp.EncodeCommand("REPLCONF", "ACK", strconv.FormatInt(offset, 10))
				rw.Raw(ackCmd)
				rw.Flush()
			}
		default:
			apply(name, args[1:])
		}
		m.RecordApplied(n)
	}
}

func handshake(rr *resp.Reader, rw *resp.Writer, listenPort int) error {
	steps := [][]string{
		{"PING"},
		{"REPLCONF", "listening-port", strconv.FormatInt(int64(listenPort), 10)},
		{"REPLCONF", "capa", "psync2"},
		{"PSYNC", "?", "-1"},
	}
	for _, args := range steps {
		rw.Raw(resp.EncodeCommand(args...))
		if err := rw.Flush(); err != nil {
			return err
		}
		if _, _, err := rr.ReadReply(); err != nil {
			return fmt.Errorf("reply to %v: %w", args, err)
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
