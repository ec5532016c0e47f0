package log

import (
	"fmt"
	stdlog "log"
)

// MustInit opens the journal named after app in the toyblock directory.
func MustInit(app string) {
	err := Init(fmt.Sprintf("%s.db", app))
	if err != nil {
		stdlog.Fatalf("FATAL: Failed to initialize journal: %v\n", err)
	}
}
