package block

// OutputMetadata is the ledger state of an output as reported by a node.
type OutputMetadata struct {
	BlockID                  BlockID       `json:"blockId"`
	TransactionID            TransactionID `json:"transactionId"`
	OutputIndex              uint16        `json:"outputIndex"`
	IsSpent                  bool          `json:"isSpent"`
	MilestoneIndexBooked     uint32        `json:"milestoneIndexBooked"`
	MilestoneTimestampBooked uint32        `json:"milestoneTimestampBooked"`
	LedgerIndex              uint32        `json:"ledgerIndex"`
}

// OutputID returns the packed ID of the described output.
func (m *OutputMetadata) OutputID() OutputID {
	return NewOutputID(m.TransactionID, m.OutputIndex)
}
