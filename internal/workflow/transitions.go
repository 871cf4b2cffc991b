package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"

	"optilab/internal/entities"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/types"
)

// ErrNotEligible - сущность не подходит для массового перехода и пропускается.
var ErrNotEligible = errors.New("сущность не подходит для перехода")

type jobEdge struct {
	Role constants.Role
	Next constants.JobStatus
}

// jobTransitions - единственное место, где описано, кто и куда двигает работу.
var jobTransitions = map[constants.JobStatus]jobEdge{
	constants.JobStatusPendingInBranch: {Role: constants.RoleBranch, Next: constants.JobStatusSentToLab},
	constants.JobStatusSentToLab:       {Role: constants.RoleLab, Next: constants.JobStatusReceivedByLab},
	constants.JobStatusReceivedByLab:   {Role: constants.RoleLab, Next: constants.JobStatusCompleted},
	constants.JobStatusCompleted:       {Role: constants.RoleLab, Next: constants.JobStatusSentToBranch},
	constants.JobStatusSentToBranch:    {Role: constants.RoleBranch, Next: constants.JobStatusReceivedByBranch},
}

// NextJobStatus возвращает следующий шаг и роль-владельца текущего статуса.
func NextJobStatus(current constants.JobStatus) (constants.JobStatus, constants.Role, bool) {
	edge, ok := jobTransitions[current]
	return edge.Next, edge.Role, ok
}

// JobChange - запрошенные изменения. nil означает "не менять".
type JobChange struct {
	Status          *constants.JobStatus
	Priority        *constants.Priority
	PriorityMessage *string
	Description     *string
	BranchID        *string
	BranchName      *string
}

func (c JobChange) IsEmpty() bool {
	return c.Status == nil && c.Priority == nil && c.PriorityMessage == nil &&
		c.Description == nil && c.BranchID == nil && c.BranchName == nil
}

// CheckBranchScope: филиал видит и меняет только свои сущности.
func CheckBranchScope(actor types.Actor, branchID, entityID string) error {
	if actor.IsBranch() && branchID != actor.ID {
		return fmt.Errorf("%s принадлежит другому филиалу: %w", entityID, apperrors.ErrForbidden)
	}
	return nil
}

// CheckJobTransition проверяет переход по таблице. Админ может выставить любой статус.
func CheckJobTransition(job entities.Job, target constants.JobStatus, actor types.Actor) error {
	if !target.Valid() {
		return apperrors.NewInvalidInputError("Неизвестный статус работы: %s", target)
	}
	if actor.IsAdmin() {
		return nil
	}
	if err := CheckBranchScope(actor, job.BranchID, job.ID); err != nil {
		return err
	}

	edge, ok := jobTransitions[job.Status]
	if !ok || edge.Next != target {
		return apperrors.NewInvalidInputError("Работа %s: переход %s -> %s недопустим", job.ID, job.Status, target)
	}
	if edge.Role != actor.Role {
		return fmt.Errorf("работа %s: переход %s -> %s доступен только роли %s: %w",
			job.ID, job.Status, target, edge.Role, apperrors.ErrForbidden)
	}
	return nil
}

// ApplyJobChange применяет изменения к job на месте и возвращает новые записи журнала.
// Пустой результат означает no-op: ни журнал, ни updated_at не меняются.
func ApplyJobChange(job *entities.Job, change JobChange, actor types.Actor, now time.Time) ([]entities.HistoryEntry, error) {
	if err := CheckBranchScope(actor, job.BranchID, job.ID); err != nil {
		return nil, err
	}

	ts := Stamp(now, job.UpdatedAt)
	var entries []entities.HistoryEntry

	if change.Status != nil && *change.Status != job.Status {
		if err := CheckJobTransition(*job, *change.Status, actor); err != nil {
			return nil, err
		}
		entries = append(entries, StatusChanged(job.ID, string(job.Status), string(*change.Status), actor, ts))
		job.Status = *change.Status
	}

	if change.Priority != nil || change.PriorityMessage != nil {
		priority := job.Priority
		if change.Priority != nil {
			priority = *change.Priority
		}
		if !priority.Valid() {
			return nil, apperrors.NewInvalidInputError("Неизвестный приоритет: %s", priority)
		}

		message := job.PriorityMessage
		if change.PriorityMessage != nil {
			message = null.NewString(strings.TrimSpace(*change.PriorityMessage), strings.TrimSpace(*change.PriorityMessage) != "")
		}
		// Текст приоритета имеет смысл только для не-Normal.
		if priority == constants.PriorityNormal {
			message = null.String{}
		}

		if priority != job.Priority || message != job.PriorityMessage {
			entries = append(entries, PriorityChanged(job.ID, job.Priority, priority, message, actor, ts))
			job.Priority = priority
			job.PriorityMessage = message
		}
	}

	if change.Description != nil {
		description := strings.TrimSpace(*change.Description)
		if description == "" {
			return nil, apperrors.NewInvalidInputError("Не указано описание работы")
		}
		if description != job.Description {
			if actor.IsLab() {
				return nil, fmt.Errorf("работа %s: описание меняет только филиал или админ: %w", job.ID, apperrors.ErrForbidden)
			}
			entries = append(entries, DescriptionEdited(job.ID, job.Description, description, actor, ts))
			job.Description = description
		}
	}

	if change.BranchID != nil || change.BranchName != nil {
		branchID, branchName := job.BranchID, job.BranchName
		if change.BranchID != nil {
			branchID = strings.TrimSpace(*change.BranchID)
		}
		if change.BranchName != nil {
			branchName = strings.TrimSpace(*change.BranchName)
		}
		if branchID == "" {
			return nil, apperrors.NewInvalidInputError("Филиал не может быть пустым")
		}
		if branchID != job.BranchID || branchName != job.BranchName {
			if !actor.IsAdmin() {
				return nil, fmt.Errorf("работа %s: перевод в другой филиал доступен только админу: %w", job.ID, apperrors.ErrForbidden)
			}
			if branchName == "" {
				branchName = branchID
			}
			entries = append(entries, BranchTransferred(job.ID, job.BranchID, branchID, branchName, actor, ts))
			job.BranchID = branchID
			job.BranchName = branchName
		}
	}

	if len(entries) > 0 {
		job.UpdatedAt = ts
		job.History = append(job.History, entries...)
	}
	return entries, nil
}

// ApplyBulkStatus - один шаг графа для массовой операции. Обход графа админом здесь
// не действует: подходят только работы, чей исходящий переход ведет в target.
func ApplyBulkStatus(job *entities.Job, target constants.JobStatus, actor types.Actor, now time.Time) ([]entities.HistoryEntry, error) {
	edge, ok := jobTransitions[job.Status]
	if !ok || edge.Next != target {
		return nil, ErrNotEligible
	}
	if !actor.IsAdmin() && (edge.Role != actor.Role || CheckBranchScope(actor, job.BranchID, job.ID) != nil) {
		return nil, ErrNotEligible
	}
	return ApplyJobChange(job, JobChange{Status: &target}, actor, now)
}

type sparePartEdge struct {
	Next  constants.SparePartStatus
	Roles []constants.Role
}

var sparePartTransitions = map[constants.SparePartStatus][]sparePartEdge{
	constants.SparePartStatusOrdered: {
		{Next: constants.SparePartStatusReceivedCentral, Roles: []constants.Role{constants.RoleLab}},
		{Next: constants.SparePartStatusCancelled, Roles: []constants.Role{constants.RoleBranch, constants.RoleLab}},
	},
	constants.SparePartStatusReceivedCentral: {
		{Next: constants.SparePartStatusSentToBranch, Roles: []constants.Role{constants.RoleLab}},
	},
	constants.SparePartStatusSentToBranch: {
		{Next: constants.SparePartStatusReceivedByBranch, Roles: []constants.Role{constants.RoleBranch}},
	},
}

type SparePartChange struct {
	Status *constants.SparePartStatus
	Notes  *string
}

func (c SparePartChange) IsEmpty() bool {
	return c.Status == nil && (c.Notes == nil || strings.TrimSpace(*c.Notes) == "")
}

// CheckSparePartTransition - линейная цепочка плюс отмена из Ordered.
// Админ может пройти любое ребро графа, но не перепрыгивать через него.
func CheckSparePartTransition(order entities.SparePartOrder, target constants.SparePartStatus, actor types.Actor) error {
	if !target.Valid() {
		return apperrors.NewInvalidInputError("Неизвестный статус заказа: %s", target)
	}
	if err := CheckBranchScope(actor, order.BranchID, order.ID); err != nil {
		return err
	}

	for _, edge := range sparePartTransitions[order.Status] {
		if edge.Next != target {
			continue
		}
		if actor.IsAdmin() {
			return nil
		}
		for _, r := range edge.Roles {
			if r == actor.Role {
				return nil
			}
		}
		return fmt.Errorf("заказ %s: переход %s -> %s недоступен роли %s: %w",
			order.ID, order.Status, target, actor.Role, apperrors.ErrForbidden)
	}
	return apperrors.NewInvalidInputError("Заказ %s: переход %s -> %s недопустим", order.ID, order.Status, target)
}

// ApplySparePartChange - то же, что ApplyJobChange, для заказа запчасти.
func ApplySparePartChange(order *entities.SparePartOrder, change SparePartChange, actor types.Actor, now time.Time) ([]entities.HistoryEntry, error) {
	if err := CheckBranchScope(actor, order.BranchID, order.ID); err != nil {
		return nil, err
	}

	ts := Stamp(now, order.UpdatedAt)
	notes := ""
	if change.Notes != nil {
		notes = strings.TrimSpace(*change.Notes)
	}

	var entries []entities.HistoryEntry
	if change.Status != nil && *change.Status != order.Status {
		if err := CheckSparePartTransition(*order, *change.Status, actor); err != nil {
			return nil, err
		}
		e := StatusChanged(order.ID, string(order.Status), string(*change.Status), actor, ts)
		if notes != "" {
			e.Notes = null.StringFrom(notes)
		}
		entries = append(entries, e)
		order.Status = *change.Status
	} else if notes != "" {
		entries = append(entries, NoteAdded(order.ID, notes, actor, ts))
	}

	if len(entries) == 0 {
		return nil, nil
	}
	if notes != "" {
		order.Notes = appendNotes(order.Notes, notes)
	}
	order.UpdatedAt = ts
	order.History = append(order.History, entries...)
	return entries, nil
}

func appendNotes(current null.String, notes string) null.String {
	if !current.Valid || current.String == "" {
		return null.StringFrom(notes)
	}
	return null.StringFrom(current.String + "\n" + notes)
}

// ValidateSparePartLink: заказ можно привязать только к ремонту своего филиала
// без другого активного заказа. Чужой филиал проверяется раньше типа и занятости работы.
func ValidateSparePartLink(order *entities.SparePartOrder, job *entities.Job, active *entities.SparePartOrder) error {
	if job == nil {
		return apperrors.NewInvalidInputError("Связанная работа не найдена")
	}
	if job.BranchID != order.BranchID {
		return fmt.Errorf("заказ %s филиала %s не может ссылаться на работу %s филиала %s: %w",
			order.ID, order.BranchID, job.ID, job.BranchID, apperrors.ErrForbidden)
	}
	if job.JobType != constants.JobTypeReparacion {
		return apperrors.NewInvalidInputError("Работа %s не является ремонтом (%s)", job.ID, job.JobType)
	}
	if active != nil {
		return fmt.Errorf("у работы %s уже есть активный заказ %s: %w", job.ID, active.ID, apperrors.ErrConflict)
	}
	return nil
}

// UnlinkNote - отметка в журнале заказа о том, что связанная работа удалена.
func UnlinkNote(orderID, jobID string, actor types.Actor, ts time.Time) entities.HistoryEntry {
	return NoteAdded(orderID, fmt.Sprintf("Связанная работа %s удалена", jobID), actor, ts)
}
