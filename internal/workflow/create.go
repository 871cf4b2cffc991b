package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

type NewJobInput struct {
	ID              string
	Description     string
	BranchID        string
	BranchName      string
	Priority        constants.Priority
	PriorityMessage string
	JobType         constants.JobType
}

// NormalizeJobID приводит ID новой работы к виду <ФИЛИАЛ>-<номер>.
// ID ремонтов не трогаем, кроме обрезки пробелов.
func NormalizeJobID(id string, jobType constants.JobType, branchID string) string {
	id = strings.TrimSpace(id)
	if jobType != constants.JobTypeNuevo || id == "" {
		return id
	}
	prefix := strings.ToUpper(strings.TrimSpace(branchID)) + "-"
	if strings.HasPrefix(strings.ToUpper(id), prefix) {
		return id
	}
	return prefix + id
}

// NewJob собирает работу в статусе PendingInBranch с первой записью журнала.
// Филиал может создавать работы только для себя, лаборатория не создает вовсе.
func NewJob(in NewJobInput, actor types.Actor, now time.Time) (*entities.Job, error) {
	if actor.IsLab() {
		return nil, fmt.Errorf("лаборатория не создает работы: %w", apperrors.ErrForbidden)
	}

	branchID := strings.TrimSpace(in.BranchID)
	if actor.IsBranch() {
		if branchID != "" && branchID != actor.ID {
			return nil, fmt.Errorf("филиал %s не может создать работу для %s: %w", actor.ID, branchID, apperrors.ErrForbidden)
		}
		branchID = actor.ID
	}
	if branchID == "" {
		return nil, apperrors.NewInvalidInputError("Не указан филиал")
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.NewInvalidInputError("Не указано описание работы")
	}

	jobType := in.JobType
	if jobType == "" {
		jobType = constants.JobTypeNuevo
	}
	if !jobType.Valid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный тип работы: %s", jobType)
	}

	priority := in.Priority
	if priority == "" {
		priority = constants.PriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный приоритет: %s", priority)
	}

	id := NormalizeJobID(in.ID, jobType, branchID)
	if id == "" {
		return nil, apperrors.NewInvalidInputError("Не указан номер работы")
	}

	branchName := strings.TrimSpace(in.BranchName)
	if branchName == "" {
		branchName = branchID
	}

	var message null.String
	if priority != constants.PriorityNormal {
		if m := strings.TrimSpace(in.PriorityMessage); m != "" {
			message = null.StringFrom(m)
		}
	}

	ts := now.Truncate(time.Microsecond)
	job := &entities.Job{
		ID:              id,
		Description:     description,
		BranchID:        branchID,
		BranchName:      branchName,
		Status:          constants.JobStatusPendingInBranch,
		Priority:        priority,
		PriorityMessage: message,
		JobType:         jobType,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	job.History = []entities.HistoryEntry{
		StatusChanged(id, "", string(constants.JobStatusPendingInBranch), actor, ts),
	}
	return job, nil
}

type NewSparePartInput struct {
	ID             string
	BranchID       string
	BranchName     string
	Supplier       string
	Description    string
	RequestedBy    string
	OrderReference string
	Notes          string
	Priority       constants.SparePartPriority
	OrderType      constants.SparePartOrderType
	JobID          string
}

// NewSparePartID - идентификатор заказа, если клиент его не передал.
func NewSparePartID() string {
	return "SP-" + strings.ToUpper(uuid.NewString()[:8])
}

// NewSparePartOrder собирает заказ в статусе Ordered. Связь с работой
// проверяется отдельно (ValidateSparePartLink) под блокировкой хранилища.
func NewSparePartOrder(in NewSparePartInput, actor types.Actor, now time.Time) (*entities.SparePartOrder, error) {
	branchID := strings.TrimSpace(in.BranchID)
	if actor.IsBranch() {
		if branchID != "" && branchID != actor.ID {
			return nil, fmt.Errorf("филиал %s не может заказать запчасть для %s: %w", actor.ID, branchID, apperrors.ErrForbidden)
		}
		branchID = actor.ID
	}
	if branchID == "" {
		return nil, apperrors.NewInvalidInputError("Не указан филиал")
	}

	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, apperrors.NewInvalidInputError("Не указан поставщик")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.NewInvalidInputError("Не указано описание запчасти")
	}

	priority := in.Priority
	if priority == "" {
		priority = constants.SparePartPriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный приоритет заказа: %s", priority)
	}
	orderType := in.OrderType
	if orderType == "" {
		orderType = constants.OrderTypeChargeable
	}
	if !orderType.Valid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный тип заказа: %s", orderType)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = NewSparePartID()
	}
	branchName := strings.TrimSpace(in.BranchName)
	if branchName == "" {
		branchName = branchID
	}
	requestedBy := strings.TrimSpace(in.RequestedBy)
	if requestedBy == "" {
		requestedBy = actor.DisplayName()
	}

	ts := now.Truncate(time.Microsecond)
	order := &entities.SparePartOrder{
		ID:             id,
		BranchID:       branchID,
		BranchName:     branchName,
		Supplier:       supplier,
		Description:    description,
		RequestedBy:    requestedBy,
		OrderReference: optionalString(in.OrderReference),
		Notes:          optionalString(in.Notes),
		Status:         constants.SparePartStatusOrdered,
		Priority:       priority,
		OrderType:      orderType,
		JobID:          optionalString(in.JobID),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	first := StatusChanged(id, "", string(constants.SparePartStatusOrdered), actor, ts)
	first.Notes = order.Notes
	order.History = []entities.HistoryEntry{first}
	return order, nil
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}
