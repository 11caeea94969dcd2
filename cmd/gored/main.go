// Command gored runs the RESP key-value server described by spec.md:
// a typed in-memory store, master/replica propagation, and pub/sub, spoken
// over the Redis wire protocol. Flag handling and startup sequencing follow
// the teacher's examples/*/main.go pattern — flags parsed up front, a
// logger constructed once, then handed down by reference.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rsms/gored/internal/logx"
	"github.com/rsms/gored/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	port := flag.Int("port", 6379, "TCP port to listen on")
	replicaof := flag.String("replicaof", "", `upstream master, as "<host> <port>"`)
	dir := flag.String("dir", "", "directory containing the RDB snapshot file (master mode only)")
	dbfilename := flag.String("dbfilename", "", "RDB snapshot filename (master mode only)")
	flag.Parse()

	cfg := server.Config{
		Port:       *port,
		Dir:        *dir,
		DBFilename: *dbfilename,
	}

	if *replicaof != "" {
		host, rport, err := splitReplicaOf(*replicaof)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gored:", err)
			return 1
		}
		cfg.ReplicaOfHost = host
		cfg.ReplicaOfPort = rport
		// --dir and --dbfilename are master-only per spec.md §6; ignored
		// silently when --replicaof is present.
		cfg.Dir = ""
		cfg.DBFilename = ""
	}

	log := logx.New("gored")
	srv := server.New(cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		log.Error("fatal: %v", err)
		return 1
	}
	return 0
}

func splitReplicaOf(v string) (host, port string, err error) {
	fields := strings.Fields(v)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("--replicaof expects \"<host> <port>\", got %q", v)
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return "", "", fmt.Errorf("--replicaof port must be numeric: %q", fields[1])
	}
	return fields[0], fields[1], nil
}
