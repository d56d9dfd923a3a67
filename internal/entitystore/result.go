package entitystore

// WriteStatus is three-valued on purpose. The store's acknowledgement and
// durability are decoupled: a write can be accepted without a confirmable
// receipt for tens of seconds, which is neither success nor failure.
type WriteStatus string

const (
	// WriteConfirmed means the store issued a key and receipt.
	WriteConfirmed WriteStatus = "confirmed"
	// WritePending means the write was submitted but no receipt is
	// available yet. The record may or may not become readable later.
	WritePending WriteStatus = "pending"
	// WriteFailed accompanies a non-nil error from Write.
	WriteFailed WriteStatus = "failed"
)

type WriteResult struct {
	Status WriteStatus
	// Key is the content-addressed record key. Empty while pending.
	Key string
	// Receipt references the accepted write. Empty while pending.
	Receipt string
}

func (r WriteResult) Confirmed() bool {
	return r.Status == WriteConfirmed
}

func (r WriteResult) Pending() bool {
	return r.Status == WritePending
}
