package constants

// SparePartStatus - этап заказа запчасти.
type SparePartStatus string

const (
	SparePartStatusOrdered          SparePartStatus = "Ordered"
	SparePartStatusReceivedCentral  SparePartStatus = "ReceivedCentral"
	SparePartStatusSentToBranch     SparePartStatus = "SentToBranch"
	SparePartStatusReceivedByBranch SparePartStatus = "ReceivedByBranch"
	SparePartStatusCancelled        SparePartStatus = "Cancelled"
)

var AllSparePartStatuses = []SparePartStatus{
	SparePartStatusOrdered,
	SparePartStatusReceivedCentral,
	SparePartStatusSentToBranch,
	SparePartStatusReceivedByBranch,
	SparePartStatusCancelled,
}

var TerminalSparePartStatuses = []SparePartStatus{
	SparePartStatusReceivedByBranch,
	SparePartStatusCancelled,
}

func (s SparePartStatus) Valid() bool {
	for _, v := range AllSparePartStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s SparePartStatus) IsTerminal() bool {
	for _, v := range TerminalSparePartStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s SparePartStatus) String() string { return string(s) }

type SparePartPriority string

const (
	SparePartPriorityNormal  SparePartPriority = "Normal"
	SparePartPriorityUrgente SparePartPriority = "Urgente"
)

func (p SparePartPriority) Valid() bool {
	return p == SparePartPriorityNormal || p == SparePartPriorityUrgente
}

type SparePartOrderType string

const (
	OrderTypeChargeable SparePartOrderType = "Chargeable"
	OrderTypeWarranty   SparePartOrderType = "Warranty"
)

func (t SparePartOrderType) Valid() bool {
	return t == OrderTypeChargeable || t == OrderTypeWarranty
}
