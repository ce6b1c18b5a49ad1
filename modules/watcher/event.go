package watcher

import (
	"github.com/Leantar/fsewatcher/modules/fsevents"
)

// Kinds understood by the FIM server.
const (
	KindCreate = "CREATE"
	KindDelete = "DELETE"
	KindChange = "CHANGE"
)

// Kind folds a kernel event type into a FIM event kind.
func Kind(typ int32) string {
	switch typ {
	case fsevents.TypeCreateFile, fsevents.TypeCreateDir:
		return KindCreate
	case fsevents.TypeDelete:
		return KindDelete
	default:
		return KindChange
	}
}
