package core

// Commitment represents the confirmation level requested from the ledger.
type Commitment int

// Commitment level constants, weakest to strongest.
const (
	// CommitmentProcessed waits only for the node to process the transaction.
	CommitmentProcessed Commitment = iota
	// CommitmentConfirmed waits for supermajority confirmation.
	CommitmentConfirmed
	// CommitmentFinalized waits for the block to be rooted.
	CommitmentFinalized
)

// String returns the string representation used on the wire.
func (c Commitment) String() string {
	return [...]string{
		"processed",
		"confirmed",
		"finalized",
	}[c]
}

// MarshalJSON implements json.Marshaler for Commitment.
func (c Commitment) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Commitment.
func (c *Commitment) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"processed"`:
		*c = CommitmentProcessed
	case `"confirmed"`:
		*c = CommitmentConfirmed
	case `"finalized"`:
		*c = CommitmentFinalized
	}
	return nil
}
