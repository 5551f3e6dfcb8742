package doctors

import (
	"context"
	"database/sql"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"hospital-service/internal/pkg/utils"
)

type doctorPostgresRepository struct {
	Transactor contracts.Transactor
}

func NewDoctorPostgresRepository(transactor contracts.Transactor) contracts.DoctorRepository {
	return &doctorPostgresRepository{
		Transactor: transactor,
	}
}

func (repo *doctorPostgresRepository) FindByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	if !utils.IsUUID(doctorID) {
		return nil, nil
	}
	return repo.findOne(ctx, queries.GetDoctorByID, doctorID)
}

// FindByIDForUpdate must run inside a transaction for the row lock to hold.
func (repo *doctorPostgresRepository) FindByIDForUpdate(ctx context.Context, doctorID string) (*models.Doctor, error) {
	if !utils.IsUUID(doctorID) {
		return nil, nil
	}
	return repo.findOne(ctx, queries.GetDoctorByIDForUpdate, doctorID)
}

func (repo *doctorPostgresRepository) FindByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	return repo.findOne(ctx, queries.GetDoctorByUserID, userID)
}

func (repo *doctorPostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, query, arg).Scan(
		&doctor.ID,
		&doctor.UserID,
		&doctor.FirstName,
		&doctor.LastName,
		&doctor.Specialization,
		&doctor.AvailableDays,
		&doctor.AvailableTimeFrom,
		&doctor.AvailableTimeTo,
		&doctor.MaxPatientsPerDay,
		&doctor.ConsultationFee,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &doctor, nil
}
