package app

import (
	"gorm.io/gorm"

	inspectionrepos "github.com/platewatch/platewatch-backend/internal/data/repos/inspections"
	jobrepos "github.com/platewatch/platewatch-backend/internal/data/repos/jobs"
	"github.com/platewatch/platewatch-backend/internal/pkg/logger"
)

type Repos struct {
	Establishment inspectionrepos.EstablishmentRepo
	Violation     inspectionrepos.ViolationRepo
	Search        inspectionrepos.SearchRepo
	IngestionRun  jobrepos.IngestionRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Establishment: inspectionrepos.NewEstablishmentRepo(db, log),
		Violation:     inspectionrepos.NewViolationRepo(db, log),
		Search:        inspectionrepos.NewSearchRepo(db, log),
		IngestionRun:  jobrepos.NewIngestionRunRepo(db, log),
	}
}
