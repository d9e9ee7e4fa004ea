package recorder

import "RuleBadge/internal/model"

// Recorder keeps a local ledger of pipeline runs for later analysis.
type Recorder interface {
	RecordRun(res *model.RunResult) error
	Close() error
}
