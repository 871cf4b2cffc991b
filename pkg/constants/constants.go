// pkg/constants/constants.go
package constants

import "time"

//============== ROLES ==============

// Role - роль актора. Определяет, какие переходы ему доступны.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleBranch Role = "Branch"
	RoleLab    Role = "Lab"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleBranch || r == RoleLab
}

//============== HISTORY EVENTS ==============

// EventType - вид записи в журнале сущности.
type EventType string

const (
	EventStatusChange      EventType = "STATUS_CHANGE"
	EventPriorityChange    EventType = "PRIORITY_CHANGE"
	EventDescriptionChange EventType = "DESCRIPTION_CHANGE"
	EventBranchTransfer    EventType = "BRANCH_TRANSFER"
	EventNote              EventType = "NOTE"
)

//============== CACHE KEYS ==============

const (
	// Счетчик версии статистики. Увеличивается при любом изменении работ.
	// Формат: stats:version -> int
	CacheKeyStatsVersion = "stats:version"

	// Готовый результат статистики.
	// Формат: stats:<version>:<hash> -> json
	CacheKeyStats = "stats:%s:%x"
)

//============== WORKFLOW ==============

const (
	// Порог SLA в рабочих часах для SentToLab и SentToBranch.
	DefaultOverdueThresholdHours = 48

	DefaultPageSize = 10
	MaxPageSize     = 100
)

const OverdueScanTimeout = 2 * time.Minute
