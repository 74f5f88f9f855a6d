package model

type TransferStatus string

const (
	TransferRequested TransferStatus = "requested"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferRejected  TransferStatus = "rejected"
)

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferRequested: {TransferApproved, TransferRejected},
	TransferApproved:  {TransferInTransit},
	TransferInTransit: {TransferCompleted},
}

func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferRejected
}

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferRequested, TransferApproved, TransferInTransit, TransferCompleted, TransferRejected:
		return true
	}
	return false
}

type Transfer struct {
	BaseModel
	ProductID        string         `db:"product_id" json:"product_id"`
	SourceLotID      string         `db:"source_lot_id" json:"source_lot_id"`
	DestinationLotID *string        `db:"destination_lot_id" json:"destination_lot_id"`
	SourceDebited    bool           `db:"source_debited" json:"source_debited"`
	FromLocationID   int64          `db:"from_location_id" json:"from_location_id"`
	ToLocationID     int64          `db:"to_location_id" json:"to_location_id"`
	Quantity         int64          `db:"quantity" json:"quantity"`
	Status           TransferStatus `db:"status" json:"status"`
	RequestedBy      *string        `db:"requested_by" json:"requested_by"`
	Notes            string         `db:"notes" json:"notes"`
}
