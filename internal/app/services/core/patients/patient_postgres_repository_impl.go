package patients

import (
	"context"
	"database/sql"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"hospital-service/internal/pkg/utils"
)

type patientPostgresRepository struct {
	Transactor contracts.Transactor
}

func NewPatientPostgresRepository(transactor contracts.Transactor) contracts.PatientRepository {
	return &patientPostgresRepository{
		Transactor: transactor,
	}
}

func (repo *patientPostgresRepository) FindByID(ctx context.Context, patientID string) (*models.Patient, error) {
	if !utils.IsUUID(patientID) {
		return nil, nil
	}
	return repo.findOne(ctx, queries.GetPatientByID, patientID)
}

func (repo *patientPostgresRepository) FindByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	return repo.findOne(ctx, queries.GetPatientByUserID, userID)
}

func (repo *patientPostgresRepository) findOne(ctx context.Context, query, arg string) (*models.Patient, error) {
	var patient models.Patient
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&patient.ID,
		&patient.UserID,
		&patient.FirstName,
		&patient.LastName,
		&patient.Phone,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &patient, nil
}
