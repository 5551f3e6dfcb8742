// Package memstore keeps doctors, patients, appointments and transactions in memory.
// It backs usecase tests and mirrors the conditional updates and the active slot
// constraint of the postgres schema.
package memstore

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
	"sync"
	"time"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	seq  int

	Doctors      map[string]models.Doctor
	Patients     map[string]models.Patient
	Appointments map[string]models.Appointment
	Transactions map[string]models.Transaction
	Now          func() time.Time
}

func New() *Store {
	return &Store{
		Doctors:      map[string]models.Doctor{},
		Patients:     map[string]models.Patient{},
		Appointments: map[string]models.Appointment{},
		Transactions: map[string]models.Transaction{},
		Now:          time.Now,
	}
}

func (s *Store) AddDoctor(doctor models.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Doctors[doctor.ID] = doctor
}

func (s *Store) AddPatient(patient models.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Patients[patient.ID] = patient
}

func (s *Store) Appointment(id string) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Appointments[id]
}

func (s *Store) Transaction(reference string) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Transactions[reference]
}

// Age moves a transaction's creation time back by d.
func (s *Store) Age(reference string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transaction := s.Transactions[reference]
	transaction.CreatedAt = transaction.CreatedAt.Add(-d)
	s.Transactions[reference] = transaction
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// WithinTransaction serializes units of work and restores a snapshot when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	appointments := make(map[string]models.Appointment, len(s.Appointments))
	for k, v := range s.Appointments {
		appointments[k] = v
	}
	transactions := make(map[string]models.Transaction, len(s.Transactions))
	for k, v := range s.Transactions {
		transactions[k] = v
	}
	seq := s.seq
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.Appointments = appointments
		s.Transactions = transactions
		s.seq = seq
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Executor(ctx context.Context) contracts.DBExecutor {
	return nil
}

func (s *Store) DoctorRepository() contracts.DoctorRepository {
	return doctorRepository{s}
}

func (s *Store) PatientRepository() contracts.PatientRepository {
	return patientRepository{s}
}

func (s *Store) AppointmentRepository() contracts.AppointmentRepository {
	return appointmentRepository{s}
}

func (s *Store) TransactionRepository() contracts.TransactionRepository {
	return transactionRepository{s}
}

type doctorRepository struct{ s *Store }

func (r doctorRepository) FindByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if doctor, ok := r.s.Doctors[doctorID]; ok {
		return &doctor, nil
	}
	return nil, nil
}

func (r doctorRepository) FindByIDForUpdate(ctx context.Context, doctorID string) (*models.Doctor, error) {
	return r.FindByID(ctx, doctorID)
}

func (r doctorRepository) FindByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, doctor := range r.s.Doctors {
		if doctor.UserID == userID {
			return &doctor, nil
		}
	}
	return nil, nil
}

type patientRepository struct{ s *Store }

func (r patientRepository) FindByID(ctx context.Context, patientID string) (*models.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if patient, ok := r.s.Patients[patientID]; ok {
		return &patient, nil
	}
	return nil, nil
}

func (r patientRepository) FindByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, patient := range r.s.Patients {
		if patient.UserID == userID {
			return &patient, nil
		}
	}
	return nil, nil
}

type appointmentRepository struct{ s *Store }

func isActive(status string) bool {
	for _, active := range models.ActiveAppointmentStatuses {
		if status == active {
			return true
		}
	}
	return false
}

func (r appointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.Appointments {
		if existing.DoctorID == appointment.DoctorID &&
			existing.AppointmentDate == appointment.AppointmentDate &&
			existing.AppointmentTime == appointment.AppointmentTime &&
			isActive(existing.Status) {
			return exceptions.ErrSlotTaken(nil, appointment.DoctorID, appointment.AppointmentDate, appointment.AppointmentTime)
		}
	}
	now := r.s.Now()
	appointment.ID = r.s.nextID("appt")
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	r.s.Appointments[appointment.ID] = *appointment
	return nil
}

func (r appointmentRepository) CountActiveAtSlot(ctx context.Context, doctorID, date, clock string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, a := range r.s.Appointments {
		if a.DoctorID == doctorID && a.AppointmentDate == date && a.AppointmentTime == clock && isActive(a.Status) {
			count++
		}
	}
	return count, nil
}

func (r appointmentRepository) CountActiveOnDate(ctx context.Context, doctorID, date string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, a := range r.s.Appointments {
		if a.DoctorID == doctorID && a.AppointmentDate == date && isActive(a.Status) {
			count++
		}
	}
	return count, nil
}

func (r appointmentRepository) ListBookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	times := []string{}
	for _, a := range r.s.Appointments {
		if a.DoctorID == doctorID && a.AppointmentDate == date && isActive(a.Status) {
			times = append(times, a.AppointmentTime)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (r appointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.Appointments[appointmentID]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r appointmentRepository) FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return r.FindByID(ctx, appointmentID)
}

func (r appointmentRepository) FindDetailByID(ctx context.Context, appointmentID string) (*models.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Appointments[appointmentID]
	if !ok {
		return nil, nil
	}
	detail := r.s.detail(a)
	return &detail, nil
}

func (s *Store) detail(a models.Appointment) models.AppointmentDetail {
	patient := s.Patients[a.PatientID]
	doctor := s.Doctors[a.DoctorID]
	return models.AppointmentDetail{
		Appointment:      a,
		PatientFirstName: patient.FirstName,
		PatientLastName:  patient.LastName,
		PatientPhone:     patient.Phone,
		DoctorFirstName:  doctor.FirstName,
		DoctorLastName:   doctor.LastName,
		Specialization:   doctor.Specialization,
	}
}

func (r appointmentRepository) FindAllDetails(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	details := []models.AppointmentDetail{}
	for _, a := range r.s.Appointments {
		switch {
		case filter.PatientID != "" && a.PatientID != filter.PatientID,
			filter.DoctorID != "" && a.DoctorID != filter.DoctorID,
			filter.Status != "" && a.Status != filter.Status,
			filter.Date != "" && a.AppointmentDate != filter.Date,
			filter.FromDate != "" && a.AppointmentDate < filter.FromDate,
			filter.ToDate != "" && a.AppointmentDate > filter.ToDate:
			continue
		}
		details = append(details, r.s.detail(a))
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].AppointmentDate != details[j].AppointmentDate {
			return details[i].AppointmentDate > details[j].AppointmentDate
		}
		return details[i].AppointmentTime > details[j].AppointmentTime
	})
	return details, nil
}

func (r appointmentRepository) UpdateStatus(ctx context.Context, appointmentID, from, to, notes string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Appointments[appointmentID]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	if notes != "" {
		a.Notes = notes
	}
	a.UpdatedAt = r.s.Now()
	r.s.Appointments[appointmentID] = a
	return true, nil
}

func (r appointmentRepository) MarkPaid(ctx context.Context, appointmentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Appointments[appointmentID]
	if !ok {
		return nil
	}
	a.PaymentStatus = constvars.PaymentStatusPaid
	if a.Status == constvars.AppointmentStatusPendingPayment {
		a.Status = constvars.AppointmentStatusScheduled
	}
	a.UpdatedAt = r.s.Now()
	r.s.Appointments[appointmentID] = a
	return nil
}

type transactionRepository struct{ s *Store }

func (r transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.Transactions[transaction.Reference]; exists {
		return exceptions.ErrPostgresDBInsertData(fmt.Errorf("duplicate reference %s", transaction.Reference))
	}
	now := r.s.Now()
	transaction.ID = r.s.nextID("tx")
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	r.s.Transactions[transaction.Reference] = *transaction
	return nil
}

func (r transactionRepository) AttachGatewayIDs(ctx context.Context, reference, checkoutID, merchantID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.Transactions[reference]
	if !ok {
		return nil
	}
	t.MpesaCheckoutID = checkoutID
	t.MpesaMerchantID = merchantID
	t.UpdatedAt = r.s.Now()
	r.s.Transactions[reference] = t
	return nil
}

func (r transactionRepository) MarkSuccess(ctx context.Context, reference, receipt, phone string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.Transactions[reference]
	if !ok || t.Status != constvars.TransactionStatusPending {
		return false, nil
	}
	t.Status = constvars.TransactionStatusSuccess
	if t.MpesaReceipt == "" {
		t.MpesaReceipt = receipt
	}
	if phone != "" {
		t.MpesaPhone = phone
	}
	t.UpdatedAt = r.s.Now()
	r.s.Transactions[reference] = t
	return true, nil
}

func (r transactionRepository) MarkFailed(ctx context.Context, reference string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.Transactions[reference]
	if !ok || t.Status != constvars.TransactionStatusPending {
		return false, nil
	}
	t.Status = constvars.TransactionStatusFailed
	t.UpdatedAt = r.s.Now()
	r.s.Transactions[reference] = t
	return true, nil
}

func (r transactionRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.Transactions[reference]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r transactionRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.Transactions {
		if checkoutID != "" && t.MpesaCheckoutID == checkoutID {
			return &t, nil
		}
	}
	return nil, nil
}

func (r transactionRepository) FindViewByReference(ctx context.Context, reference string) (*models.TransactionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.Transactions[reference]
	if !ok {
		return nil, nil
	}
	a := r.s.Appointments[t.AppointmentID]
	patient := r.s.Patients[t.PatientID]
	doctor := r.s.Doctors[a.DoctorID]
	return &models.TransactionView{
		Transaction:       t,
		AppointmentDate:   a.AppointmentDate,
		AppointmentTime:   a.AppointmentTime,
		AppointmentStatus: a.Status,
		PaymentStatus:     a.PaymentStatus,
		ConsultationFee:   a.ConsultationFee,
		ReasonForVisit:    a.ReasonForVisit,
		PatientFirstName:  patient.FirstName,
		PatientLastName:   patient.LastName,
		DoctorFirstName:   doctor.FirstName,
		DoctorLastName:    doctor.LastName,
		Specialization:    doctor.Specialization,
	}, nil
}

func (r transactionRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stale []models.Transaction
	for _, t := range r.s.Transactions {
		if t.IsAwaitingGateway() && t.CreatedAt.Before(createdBefore) {
			stale = append(stale, t)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].CreatedAt.Before(stale[j].CreatedAt) })
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}
