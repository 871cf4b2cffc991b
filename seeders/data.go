package seeders

import (
	"optilab/pkg/constants"
	"optilab/pkg/types"
)

var demoBranches = []types.Actor{
	{ID: "CENTRO", Username: "Óptica Centro", Role: constants.RoleBranch},
	{ID: "NORTE", Username: "Óptica Norte", Role: constants.RoleBranch},
	{ID: "SUR", Username: "Óptica Sur", Role: constants.RoleBranch},
}

var demoLab = types.Actor{ID: "LAB", Username: "Laboratorio central", Role: constants.RoleLab}

var demoAdmin = types.Actor{ID: "admin", Username: "Administrador", Role: constants.RoleAdmin}

type demoJob struct {
	Branch      string
	Number      string
	Description string
	JobType     constants.JobType
	Priority    constants.Priority
	Message     string
	// Сколько дней назад создана и до какого статуса дошла.
	DaysAgo int
	Reach   constants.JobStatus
	// Для ремонтов: заказать запчасть у поставщика.
	Supplier string
}

var demoJobs = []demoJob{
	{Branch: "CENTRO", Number: "1001", Description: "Monofocal 1.56 antirreflejo", DaysAgo: 40, Reach: constants.JobStatusReceivedByBranch},
	{Branch: "CENTRO", Number: "1002", Description: "Progresivo 1.67 fotocromático", Priority: constants.PriorityUrgente, Message: "Cliente viaja el viernes", DaysAgo: 12, Reach: constants.JobStatusCompleted},
	{Branch: "CENTRO", Number: "1003", Description: "Bifocal flat-top", DaysAgo: 1, Reach: constants.JobStatusPendingInBranch},
	{Branch: "CENTRO", Number: "R-77", Description: "Cambio de bisagra", JobType: constants.JobTypeReparacion, DaysAgo: 6, Reach: constants.JobStatusReceivedByLab, Supplier: "Silhouette"},
	{Branch: "NORTE", Number: "2001", Description: "Monofocal policarbonato", DaysAgo: 35, Reach: constants.JobStatusReceivedByBranch},
	{Branch: "NORTE", Number: "2002", Description: "Rehacer progresivo, error de altura", Priority: constants.PriorityRepeticion, Message: "Altura pupilar mal tomada", DaysAgo: 5, Reach: constants.JobStatusSentToLab},
	{Branch: "NORTE", Number: "2003", Description: "Lente de contacto tórica", DaysAgo: 3, Reach: constants.JobStatusSentToBranch},
	{Branch: "SUR", Number: "3001", Description: "Monofocal 1.74 alto índice", Priority: constants.PriorityUrgente, DaysAgo: 20, Reach: constants.JobStatusReceivedByBranch},
	{Branch: "SUR", Number: "R-12", Description: "Plaqueta nasal rota", JobType: constants.JobTypeReparacion, DaysAgo: 2, Reach: constants.JobStatusPendingInBranch, Supplier: "Zeiss"},
}
