package shared

// RefUpdateFlag describes the status of one reference touched by a fetch.
type RefUpdateFlag uint

// Reference update flags reported by git fetch.
const (
	RefUpdateNewTag RefUpdateFlag = 1 << iota
	RefUpdateNewHead
	RefUpdateUpToDate
	RefUpdateTagUpdate
	RefUpdateRejected
	RefUpdateForcedUpdate
	RefUpdateFastForward
	RefUpdatePruned
	RefUpdateError
)

// RefUpdate is the per-reference result indicator of a single fetch call.
type RefUpdate struct {
	Flags       RefUpdateFlag
	Summary     string
	Source      string
	Destination string
	Reason      string
}

// Has reports whether every bit of flag is set.
func (update RefUpdate) Has(flag RefUpdateFlag) bool {
	return update.Flags&flag == flag
}

// UpToDate reports whether the reference was already current.
func (update RefUpdate) UpToDate() bool {
	return update.Has(RefUpdateUpToDate)
}

// AllRefsUpToDate reports whether every update carries the up-to-date flag.
// An empty set is vacuously up to date.
func AllRefsUpToDate(updates []RefUpdate) bool {
	for _, update := range updates {
		if !update.UpToDate() {
			return false
		}
	}
	return true
}
