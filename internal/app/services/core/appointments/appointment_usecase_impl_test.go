package appointments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/testsupport/memstore"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	patientIdentity      = &models.Identity{UserID: "user-patient", Role: constvars.RolePatient}
	otherPatientIdentity = &models.Identity{UserID: "user-other", Role: constvars.RolePatient}
	doctorIdentity       = &models.Identity{UserID: "user-doctor", Role: constvars.RoleDoctor}
	receptionIdentity    = &models.Identity{UserID: "user-reception", Role: constvars.RoleReceptionist}
)

type fixture struct {
	store     *memstore.Store
	publisher *MockEventPublisher
	usecase   *appointmentUsecase
}

// newFixture pins the clock to Monday 2026-03-02 09:00 in Nairobi.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	store.AddDoctor(models.Doctor{
		ID:                "doctor-1",
		UserID:            "user-doctor",
		FirstName:         "Amina",
		LastName:          "Otieno",
		Specialization:    "Cardiology",
		AvailableDays:     "Mon,Tue,Wed,Thu,Fri",
		AvailableTimeFrom: "09:00:00",
		AvailableTimeTo:   "17:00:00",
		MaxPatientsPerDay: 2,
		ConsultationFee:   1500,
	})
	store.AddPatient(models.Patient{ID: "patient-1", UserID: "user-patient", FirstName: "Jane", LastName: "Wanjiru", Phone: "0712345678"})
	store.AddPatient(models.Patient{ID: "patient-2", UserID: "user-other", FirstName: "Brian", LastName: "Kamau"})

	publisher := &MockEventPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	cfg := &config.InternalConfig{
		App:     config.App{Timezone: "Africa/Nairobi"},
		Booking: config.AppBooking{SlotGranularityInMinutes: 30},
	}
	uc := newAppointmentUsecase(store, store.AppointmentRepository(), store.DoctorRepository(), store.PatientRepository(), publisher, cfg, zap.NewNop())
	uc.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, uc.location) }

	return &fixture{store: store, publisher: publisher, usecase: uc}
}

func bookingRequest(date, clock string) *requests.CreateAppointment {
	return &requests.CreateAppointment{
		DoctorID:        "doctor-1",
		AppointmentDate: date,
		AppointmentTime: clock,
		ReasonForVisit:  "Chest pain",
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("books pending payment with fee snapshot", func(t *testing.T) {
		f := newFixture(t)

		appointment, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))

		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusPendingPayment, appointment.Status)
		assert.Equal(t, constvars.PaymentStatusUnpaid, appointment.PaymentStatus)
		assert.Equal(t, 1500.0, appointment.ConsultationFee, "fee should be copied from the doctor")
		assert.Equal(t, "10:00:00", appointment.AppointmentTime, "time should be normalized")
		assert.Equal(t, "patient-1", appointment.PatientID)
		assert.Equal(t, "Dr. Amina Otieno", appointment.DoctorName)
		assert.Equal(t, "user-patient", f.store.Appointment(appointment.AppointmentID).CreatedBy)
		f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
			return e.Type == constvars.EventAppointmentBooked && e.AppointmentID == appointment.AppointmentID
		}))
	})

	t.Run("today is bookable and yesterday is not", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-02", "15:00"))
		assert.NoError(t, err)

		_, err = f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-01", "15:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeInvalidDate), "expected INVALID_DATE, got %v", err)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)
		request := bookingRequest("2026-03-03", "10:00")
		request.DoctorID = "doctor-404"

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, request)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})

	t.Run("working hours are half open", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "17:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeOutsideHours), "end of window should be rejected")

		_, err = f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "08:30"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeOutsideHours))

		_, err = f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "09:00"))
		assert.NoError(t, err, "start of window should be accepted")
	})

	t.Run("non working weekday", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-07", "10:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeDoctorUnavailable))
	})

	t.Run("double booking is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)

		request := bookingRequest("2026-03-03", "10:00:00")
		request.PatientID = "patient-2"
		_, err = f.usecase.CreateAppointment(ctx, receptionIdentity, request)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeSlotTaken))
	})

	t.Run("concurrent bookings for one slot yield a single winner", func(t *testing.T) {
		f := newFixture(t)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			slotTaken int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-04", "11:30"))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else if exceptions.IsCode(err, exceptions.CodeSlotTaken) {
					slotTaken++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 7, slotTaken)
	})

	t.Run("capacity is enforced exactly at the maximum", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-05", "09:00"))
		require.NoError(t, err)
		second, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-05", "09:30"))
		require.NoError(t, err, "booking up to the maximum should succeed")

		_, err = f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-05", "10:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeCapacityExceeded))

		_, err = f.usecase.Cancel(ctx, patientIdentity, second.AppointmentID)
		require.NoError(t, err)
		_, err = f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-05", "10:00"))
		assert.NoError(t, err, "a cancelled appointment frees capacity")
	})

	t.Run("patient without profile", func(t *testing.T) {
		f := newFixture(t)
		stranger := &models.Identity{UserID: "user-ghost", Role: constvars.RolePatient}

		_, err := f.usecase.CreateAppointment(ctx, stranger, bookingRequest("2026-03-03", "10:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})

	t.Run("receptionist must name the patient", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, receptionIdentity, bookingRequest("2026-03-03", "10:00"))
		assert.True(t, exceptions.IsCode(err, exceptions.CodeValidation))
	})

	t.Run("event publish failure does not fail the booking", func(t *testing.T) {
		f := newFixture(t)
		failing := &MockEventPublisher{}
		failing.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)
		f.usecase.EventPublisher = failing

		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		assert.NoError(t, err)
	})
}

func TestGetAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes booked slots", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)

		slots, err := f.usecase.GetAvailableSlots(ctx, &requests.AvailableSlotsQuery{DoctorID: "doctor-1", Date: "2026-03-03"})

		require.NoError(t, err)
		assert.Equal(t, "Tuesday", slots.DayOfWeek)
		assert.Len(t, slots.AvailableSlots, 15, "16 half hour slots minus one booking")
		assert.Equal(t, "09:00:00", slots.AvailableSlots[0])
		assert.Equal(t, "16:30:00", slots.AvailableSlots[len(slots.AvailableSlots)-1])
		assert.NotContains(t, slots.AvailableSlots, "10:00:00")
	})

	t.Run("cancelled appointments free their slot", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)
		_, err = f.usecase.Cancel(ctx, patientIdentity, booked.AppointmentID)
		require.NoError(t, err)

		slots, err := f.usecase.GetAvailableSlots(ctx, &requests.AvailableSlotsQuery{DoctorID: "doctor-1", Date: "2026-03-03"})

		require.NoError(t, err)
		assert.Contains(t, slots.AvailableSlots, "10:00:00")
	})

	t.Run("non working weekday returns no slots with a reason", func(t *testing.T) {
		f := newFixture(t)

		slots, err := f.usecase.GetAvailableSlots(ctx, &requests.AvailableSlotsQuery{DoctorID: "doctor-1", Date: "2026-03-08"})

		require.NoError(t, err)
		assert.Empty(t, slots.AvailableSlots)
		assert.Equal(t, "Doctor is not available on Sunday", slots.Message)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.GetAvailableSlots(ctx, &requests.AvailableSlotsQuery{DoctorID: "nope", Date: "2026-03-03"})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})
}

func TestFindAllAppointments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
	require.NoError(t, err)
	_, err = f.usecase.CreateAppointment(ctx, otherPatientIdentity, bookingRequest("2026-03-04", "10:00"))
	require.NoError(t, err)

	mine, err := f.usecase.FindAll(ctx, patientIdentity, &requests.ListAppointments{})
	require.NoError(t, err)
	assert.Len(t, mine, 1, "patients only see their own appointments")

	all, err := f.usecase.FindAll(ctx, receptionIdentity, &requests.ListAppointments{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-03-04", all[0].AppointmentDate, "listing is newest first")

	doctors, err := f.usecase.FindAll(ctx, doctorIdentity, &requests.ListAppointments{Date: "2026-03-03"})
	require.NoError(t, err)
	assert.Len(t, doctors, 1)

	ghost, err := f.usecase.FindAll(ctx, &models.Identity{UserID: "ghost", Role: constvars.RoleDoctor}, &requests.ListAppointments{})
	require.NoError(t, err)
	assert.Empty(t, ghost)
}

func TestAppointmentTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("patients cannot touch other patients appointments", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)

		_, err = f.usecase.FindByID(ctx, otherPatientIdentity, booked.AppointmentID)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeForbidden))

		_, err = f.usecase.Cancel(ctx, otherPatientIdentity, booked.AppointmentID)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeForbidden))
	})

	t.Run("cancel is not repeatable", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)

		cancelled, err := f.usecase.Cancel(ctx, receptionIdentity, booked.AppointmentID)
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusCancelled, cancelled.Status)

		_, err = f.usecase.Cancel(ctx, receptionIdentity, booked.AppointmentID)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeInvalidTransition))
	})

	t.Run("scheduled cannot be set by hand", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)

		_, err = f.usecase.UpdateStatus(ctx, doctorIdentity, booked.AppointmentID, &requests.UpdateAppointment{Status: constvars.AppointmentStatusScheduled})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeInvalidTransition))

		_, err = f.usecase.UpdateStatus(ctx, doctorIdentity, booked.AppointmentID, &requests.UpdateAppointment{Status: constvars.AppointmentStatusCompleted})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeInvalidTransition), "unpaid appointments cannot complete")
	})

	t.Run("completed appointments keep their slot", func(t *testing.T) {
		f := newFixture(t)
		booked, err := f.usecase.CreateAppointment(ctx, patientIdentity, bookingRequest("2026-03-03", "10:00"))
		require.NoError(t, err)
		require.NoError(t, f.store.AppointmentRepository().MarkPaid(ctx, booked.AppointmentID))

		completed, err := f.usecase.UpdateStatus(ctx, doctorIdentity, booked.AppointmentID, &requests.UpdateAppointment{
			Status: constvars.AppointmentStatusCompleted,
			Notes:  "Follow up in two weeks",
		})
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusCompleted, completed.Status)
		assert.Equal(t, "Follow up in two weeks", completed.Notes)

		request := bookingRequest("2026-03-03", "10:00")
		request.PatientID = "patient-2"
		_, err = f.usecase.CreateAppointment(ctx, receptionIdentity, request)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeSlotTaken))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.usecase.FindByID(ctx, receptionIdentity, "appt-404")
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})
}
