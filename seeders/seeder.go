package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"optilab/internal/entities"
	"optilab/internal/repositories"
	"optilab/internal/workflow"
	"optilab/pkg/constants"
	apperrors "optilab/pkg/errors"
	"optilab/pkg/service"
	"optilab/pkg/types"
)

// SeedDemoJobs наполняет хранилище демонстрационными работами и заказами запчастей.
// Работы проходят цепочку статусов от имени тех ролей, которым переход разрешен.
// Уже существующие работы пропускаются.
func SeedDemoJobs(ctx context.Context, jobs repositories.JobRepositoryInterface, spareParts repositories.SparePartRepositoryInterface, now time.Time) (int, error) {
	log.Println("▶️  Запуск наполнения демонстрационных работ...")

	created := 0
	for _, d := range demoJobs {
		branch, err := branchActor(d.Branch)
		if err != nil {
			return created, err
		}

		ts := now.Add(-time.Duration(d.DaysAgo) * 24 * time.Hour)
		job, err := workflow.NewJob(workflow.NewJobInput{
			ID:              d.Number,
			Description:     d.Description,
			BranchName:      branch.Username,
			Priority:        d.Priority,
			PriorityMessage: d.Message,
			JobType:         d.JobType,
		}, branch, ts)
		if err != nil {
			return created, fmt.Errorf("работа %s: %w", d.Number, err)
		}

		if err := jobs.CreateJob(ctx, job); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Printf("    - Работа %s уже существует. Пропускаем.", job.ID)
				continue
			}
			return created, fmt.Errorf("работа %s: %w", job.ID, err)
		}
		created++

		if d.Supplier != "" {
			if err := seedSparePart(ctx, spareParts, job, d.Supplier, branch, ts.Add(time.Hour)); err != nil {
				return created, err
			}
		}
		if err := advanceJob(ctx, jobs, job, d.Reach, branch, ts); err != nil {
			return created, err
		}
	}

	log.Printf("✅ Демонстрационные работы созданы: %d", created)
	return created, nil
}

// advanceJob ведет работу по графу до статуса reach, шаг - шесть часов.
func advanceJob(ctx context.Context, jobs repositories.JobRepositoryInterface, job *entities.Job, reach constants.JobStatus, branch types.Actor, ts time.Time) error {
	current := job.Status
	for current != reach {
		next, role, ok := workflow.NextJobStatus(current)
		if !ok {
			return fmt.Errorf("работа %s: статус %s недостижим", job.ID, reach)
		}
		actor := demoLab
		if role == constants.RoleBranch {
			actor = branch
		}
		ts = ts.Add(6 * time.Hour)
		stepAt := ts

		_, err := jobs.UpdateJob(ctx, job.ID, func(j *entities.Job) ([]entities.HistoryEntry, error) {
			return workflow.ApplyJobChange(j, workflow.JobChange{Status: &next}, actor, stepAt)
		})
		if err != nil {
			return fmt.Errorf("работа %s: %s -> %s: %w", job.ID, current, next, err)
		}
		current = next
	}
	return nil
}

func seedSparePart(ctx context.Context, spareParts repositories.SparePartRepositoryInterface, job *entities.Job, supplier string, branch types.Actor, ts time.Time) error {
	order, err := workflow.NewSparePartOrder(workflow.NewSparePartInput{
		Supplier:    supplier,
		Description: job.Description,
		RequestedBy: branch.Username,
		JobID:       job.ID,
	}, branch, ts)
	if err != nil {
		return fmt.Errorf("запчасть для %s: %w", job.ID, err)
	}
	if err := spareParts.CreateSparePart(ctx, order); err != nil {
		return fmt.Errorf("запчасть для %s: %w", job.ID, err)
	}
	return nil
}

func branchActor(id string) (types.Actor, error) {
	for _, b := range demoBranches {
		if b.ID == id {
			return b, nil
		}
	}
	return types.Actor{}, fmt.Errorf("неизвестный демо-филиал %s", id)
}

// DevTokens выпускает токены для всех демонстрационных акторов.
func DevTokens(jwtSvc service.JWTService) (map[string]string, error) {
	actors := append([]types.Actor{demoAdmin, demoLab}, demoBranches...)
	tokens := make(map[string]string, len(actors))
	for _, a := range actors {
		token, err := jwtSvc.GenerateToken(a)
		if err != nil {
			return nil, fmt.Errorf("токен для %s: %w", a.ID, err)
		}
		tokens[a.ID] = token
	}
	return tokens, nil
}
