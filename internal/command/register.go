package command

// NewDefaultTable builds the command table spec.md §4.5 describes, plus the
// DEL/EXISTS/ZADD/ZSCORE/ZRANK/ZCARD/ZRANGE/ZREM surface this expansion
// supplements (SPEC_FULL.md §4).
func NewDefaultTable() *Table {
	t := NewTable()

	t.Register(&Entry{Name: "PING", Arity: 0, Flags: FlagSubscribedOK, Fn: pingHandler})
	t.Register(&Entry{Name: "ECHO", Arity: 1, Fn: echoHandler})
	t.Register(&Entry{Name: "TYPE", Arity: 1, Fn: typeHandler})
	t.Register(&Entry{Name: "KEYS", Arity: 1, Fn: keysHandler})
	t.Register(&Entry{Name: "DEL", Arity: -1, Flags: FlagWrite, Fn: delHandler})
	t.Register(&Entry{Name: "EXISTS", Arity: -1, Fn: existsHandler})
	t.Register(&Entry{Name: "CONFIG", Arity: 2, Fn: configHandler})
	t.Register(&Entry{Name: "INFO", Arity: 1, Fn: infoHandler})

	t.Register(&Entry{Name: "SET", Arity: -2, Flags: FlagWrite, Fn: setHandler})
	t.Register(&Entry{Name: "GET", Arity: 1, Fn: getHandler})
	t.Register(&Entry{Name: "INCR", Arity: 1, Flags: FlagWrite, Fn: incrHandler})

	t.Register(&Entry{Name: "RPUSH", Arity: -2, Flags: FlagWrite, Fn: rpushHandler})
	t.Register(&Entry{Name: "LPUSH", Arity: -2, Flags: FlagWrite, Fn: lpushHandler})
	t.Register(&Entry{Name: "LLEN", Arity: 1, Fn: llenHandler})
	t.Register(&Entry{Name: "LRANGE", Arity: 3, Fn: lrangeHandler})
	t.Register(&Entry{Name: "LPOP", Arity: -1, Flags: FlagWrite, Fn: lpopHandler})
	t.Register(&Entry{Name: "BLPOP", Arity: 2, Flags: FlagWrite, Fn: blpopHandler})

	t.Register(&Entry{Name: "XADD", Arity: -4, Flags: FlagWrite, Fn: xaddHandler})
	t.Register(&Entry{Name: "XRANGE", Arity: 3, Fn: xrangeHandler})
	t.Register(&Entry{Name: "XREAD", Arity: -3, Fn: xreadHandler})

	t.Register(&Entry{Name: "ZADD", Arity: 3, Flags: FlagWrite, Fn: zaddHandler})
	t.Register(&Entry{Name: "ZSCORE", Arity: 2, Fn: zscoreHandler})
	t.Register(&Entry{Name: "ZRANK", Arity: 2, Fn: zrankHandler})
	t.Register(&Entry{Name: "ZCARD", Arity: 1, Fn: zcardHandler})
	t.Register(&Entry{Name: "ZRANGE", Arity: 3, Fn: zrangeHandler})
	t.Register(&Entry{Name: "ZREM", Arity: 2, Flags: FlagWrite, Fn: zremHandler})

	t.Register(&Entry{Name: "MULTI", Arity: 0, Fn: multiHandler})
	t.Register(&Entry{Name: "EXEC", Arity: 0, Flags: FlagControl, Fn: execHandler})
	t.Register(&Entry{Name: "DISCARD", Arity: 0, Flags: FlagControl, Fn: discardHandler})

	t.Register(&Entry{Name: "SUBSCRIBE", Arity: 1, Flags: FlagSubscribedOK, Fn: subscribeHandler})
	t.Register(&Entry{Name: "UNSUBSCRIBE", Arity: 1, Flags: FlagSubscribedOK, Fn: unsubscribeHandler})
	t.Register(&Entry{Name: "PUBLISH", Arity: 2, Fn: publishHandler})

	t.Register(&Entry{Name: "WAIT", Arity: 2, Fn: waitHandler})
	t.Register(&Entry{Name: "REPLCONF", Arity: -2, Fn: replconfHandler})
	t.Register(&Entry{Name: "PSYNC", Arity: 2, Fn: psyncHandler})

	return t
}
