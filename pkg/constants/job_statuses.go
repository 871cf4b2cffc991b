package constants

// JobStatus - этап работы в цепочке филиал -> лаборатория -> филиал.
type JobStatus string

const (
	JobStatusPendingInBranch  JobStatus = "PendingInBranch"
	JobStatusSentToLab        JobStatus = "SentToLab"
	JobStatusReceivedByLab    JobStatus = "ReceivedByLab"
	JobStatusCompleted        JobStatus = "Completed"
	JobStatusSentToBranch     JobStatus = "SentToBranch"
	JobStatusReceivedByBranch JobStatus = "ReceivedByBranch"
)

// AllJobStatuses в порядке прохождения процесса.
var AllJobStatuses = []JobStatus{
	JobStatusPendingInBranch,
	JobStatusSentToLab,
	JobStatusReceivedByLab,
	JobStatusCompleted,
	JobStatusSentToBranch,
	JobStatusReceivedByBranch,
}

// TerminalJobStatuses - работа подтверждена филиалом, дальше не движется.
var TerminalJobStatuses = []JobStatus{
	JobStatusReceivedByBranch,
}

func (s JobStatus) Valid() bool {
	for _, v := range AllJobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	for _, v := range TerminalJobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s JobStatus) String() string { return string(s) }

// Priority - срочность работы. Ось независима от статуса.
type Priority string

const (
	PriorityNormal     Priority = "Normal"
	PriorityUrgente    Priority = "Urgente"
	PriorityRepeticion Priority = "Repeticion"
)

var AllPriorities = []Priority{PriorityNormal, PriorityUrgente, PriorityRepeticion}

// Rank задает порядок сортировки: Normal < Urgente < Repeticion.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgente:
		return 1
	case PriorityRepeticion:
		return 2
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityUrgente || p == PriorityRepeticion
}

// JobType влияет на правила ID и на связь с заказами запчастей.
type JobType string

const (
	JobTypeNuevo      JobType = "Nuevo"
	JobTypeReparacion JobType = "Reparacion"
)

func (t JobType) Valid() bool {
	return t == JobTypeNuevo || t == JobTypeReparacion
}

// Псевдо-фильтры статуса для списков.
const (
	StatusFilterActive  = "ACTIVE"
	StatusFilterHistory = "HISTORY"
)
