package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusQueued    RunStatus = "QUEUED"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED" // at least one order or product
	RunStatusEmpty     RunStatus = "EMPTY"     // no structured data found with this profile
	RunStatusFailed    RunStatus = "FAILED"    // terminal failure
)

// Terminal reports whether no further transition is expected.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSucceeded || s == RunStatusEmpty || s == RunStatusFailed
}
