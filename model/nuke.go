package model

// NukeStatus is the persisted snapshot of the bulk-deletion sweep. It
// is overwritten after every state transition so a crash mid-sweep
// leaves an accurate record; a fresh sweep re-enumerates rather than
// resuming.
type NukeStatus struct {
	Running    bool   `json:"running"`
	StartedAt  string `json:"startedAt,omitempty"`
	FinishedAt string `json:"finishedAt,omitempty"`
	Deleted    int    `json:"deleted"`
	LastRG     string `json:"lastRg,omitempty"`
	Error      string `json:"error,omitempty"`
}
