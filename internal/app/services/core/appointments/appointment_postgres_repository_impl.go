package appointments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"hospital-service/internal/pkg/utils"
	"strings"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation       = "23505"
	activeSlotConstraintKey = "uq_appointments_active_slot"
)

type appointmentPostgresRepository struct {
	Transactor contracts.Transactor
}

func NewAppointmentPostgresRepository(transactor contracts.Transactor) contracts.AppointmentRepository {
	return &appointmentPostgresRepository{
		Transactor: transactor,
	}
}

func (repo *appointmentPostgresRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, queries.InsertAppointment,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.ConsultationFee,
		appointment.ReasonForVisit,
		appointment.Symptoms,
		appointment.Notes,
		appointment.CreatedBy,
	).Scan(
		&appointment.ID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation && pqErr.Constraint == activeSlotConstraintKey {
			return exceptions.ErrSlotTaken(err, appointment.DoctorID, appointment.AppointmentDate, appointment.AppointmentTime)
		}
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

func (repo *appointmentPostgresRepository) CountActiveAtSlot(ctx context.Context, doctorID, date, clock string) (int, error) {
	return repo.count(ctx, queries.CountActiveAppointmentsAtSlot, doctorID, date, clock)
}

func (repo *appointmentPostgresRepository) CountActiveOnDate(ctx context.Context, doctorID, date string) (int, error) {
	return repo.count(ctx, queries.CountActiveAppointmentsOnDate, doctorID, date)
}

func (repo *appointmentPostgresRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var total int
	if err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, exceptions.ErrPostgresDBFindData(err)
	}
	return total, nil
}

func (repo *appointmentPostgresRepository) ListBookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	rows, err := repo.Transactor.Executor(ctx).QueryContext(ctx, queries.GetBookedAppointmentTimes, doctorID, date)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	times := []string{}
	for rows.Next() {
		var clock string
		if err := rows.Scan(&clock); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		times = append(times, clock)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}
	return times, nil
}

func (repo *appointmentPostgresRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return repo.findOne(ctx, queries.GetAppointmentByID, appointmentID)
}

func (repo *appointmentPostgresRepository) FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return repo.findOne(ctx, queries.GetAppointmentByIDForUpdate, appointmentID)
}

func (repo *appointmentPostgresRepository) findOne(ctx context.Context, query, appointmentID string) (*models.Appointment, error) {
	if !utils.IsUUID(appointmentID) {
		return nil, nil
	}
	var appointment models.Appointment
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, query, appointmentID).Scan(appointmentScanTargets(&appointment)...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &appointment, nil
}

func (repo *appointmentPostgresRepository) FindDetailByID(ctx context.Context, appointmentID string) (*models.AppointmentDetail, error) {
	if !utils.IsUUID(appointmentID) {
		return nil, nil
	}
	var detail models.AppointmentDetail
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, queries.GetAppointmentDetailByID, appointmentID).Scan(detailScanTargets(&detail)...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &detail, nil
}

func (repo *appointmentPostgresRepository) FindAllDetails(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, error) {
	where, args := buildAppointmentFilter(filter)
	query := queries.GetAppointmentDetails + where + queries.OrderAppointmentsByScheduleDesc

	rows, err := repo.Transactor.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	details := []models.AppointmentDetail{}
	for rows.Next() {
		var detail models.AppointmentDetail
		if err := rows.Scan(detailScanTargets(&detail)...); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}
	return details, nil
}

func (repo *appointmentPostgresRepository) UpdateStatus(ctx context.Context, appointmentID, from, to, notes string) (bool, error) {
	result, err := repo.Transactor.Executor(ctx).ExecContext(ctx, queries.UpdateAppointmentStatus, to, notes, appointmentID, from)
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affected == 1, nil
}

func (repo *appointmentPostgresRepository) MarkPaid(ctx context.Context, appointmentID string) error {
	if _, err := repo.Transactor.Executor(ctx).ExecContext(ctx, queries.MarkAppointmentPaid, appointmentID); err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func buildAppointmentFilter(filter models.AppointmentFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(condition string, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	add("a.patient_id = $%d", filter.PatientID)
	add("a.doctor_id = $%d", filter.DoctorID)
	add("a.status = $%d", filter.Status)
	add("a.appointment_date = $%d", filter.Date)
	add("a.appointment_date >= $%d", filter.FromDate)
	add("a.appointment_date <= $%d", filter.ToDate)

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func appointmentScanTargets(appointment *models.Appointment) []interface{} {
	return []interface{}{
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.AppointmentDate,
		&appointment.AppointmentTime,
		&appointment.Status,
		&appointment.PaymentStatus,
		&appointment.ConsultationFee,
		&appointment.ReasonForVisit,
		&appointment.Symptoms,
		&appointment.Notes,
		&appointment.CreatedBy,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	}
}

func detailScanTargets(detail *models.AppointmentDetail) []interface{} {
	return append(appointmentScanTargets(&detail.Appointment),
		&detail.PatientFirstName,
		&detail.PatientLastName,
		&detail.PatientPhone,
		&detail.DoctorFirstName,
		&detail.DoctorLastName,
		&detail.Specialization,
	)
}
