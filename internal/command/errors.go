package command

import (
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/store"
)

// writeStoreErr translates a store-layer error into its RESP error reply.
// ErrWrongType carries its own error-code word (WRONGTYPE); everything else
// gets the generic ERR prefix, matching spec.md §7's error-kind taxonomy.
func writeStoreErr(w *resp.Writer, err error) {
	if err == store.ErrWrongType {
		w.Error(err.Error())
		return
	}
	w.Error("ERR " + err.Error())
}
