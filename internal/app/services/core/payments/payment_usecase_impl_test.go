package payments

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/ratelimiter"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/testsupport/memstore"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Authenticate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) RequestPush(ctx context.Context, request *requests.MpesaPush) (*responses.MpesaPush, error) {
	args := m.Called(ctx, request)
	push, _ := args.Get(0).(*responses.MpesaPush)
	return push, args.Error(1)
}

func (m *MockPaymentGateway) QueryStatus(ctx context.Context, checkoutID string) *responses.MpesaStatusQuery {
	args := m.Called(ctx, checkoutID)
	return args.Get(0).(*responses.MpesaStatusQuery)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadJSON(ctx context.Context, bucketName, objectName string, payload interface{}) error {
	args := m.Called(ctx, bucketName, objectName, payload)
	return args.Error(0)
}

func (m *MockStorage) ObjectExists(ctx context.Context, bucketName, objectName string) (bool, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetObjectUrlWithExpiryTime(ctx context.Context, bucketName, objectName string, expiryTime time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiryTime)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event *models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, event := range p.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

type recordingAudit struct {
	mu     sync.Mutex
	audits []models.CallbackAudit
}

func (a *recordingAudit) Insert(ctx context.Context, audit *models.CallbackAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.audits = append(a.audits, *audit)
	return nil
}

type unrecordedPushRepository struct {
	contracts.TransactionRepository
	err error
}

func (r unrecordedPushRepository) AttachGatewayIDs(ctx context.Context, reference, checkoutID, merchantID string) error {
	return r.err
}

type redisLocker struct {
	redis *memstore.Redis
}

func (l *redisLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	value := uuid.NewString()
	ok, err := l.redis.TrySetNX(ctx, key, value, expiration)
	return ok, value, err
}

func (l *redisLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return l.redis.Delete(ctx, key)
}

func (l *redisLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return l.redis.Expire(ctx, key, expiration)
}

var (
	payingPatient = &models.Identity{UserID: "user-patient", Role: constvars.RolePatient}
	otherPatient  = &models.Identity{UserID: "user-other", Role: constvars.RolePatient}
	receptionist  = &models.Identity{UserID: "user-reception", Role: constvars.RoleReceptionist}
)

type paymentFixture struct {
	store         *memstore.Store
	gateway       *MockPaymentGateway
	storage       *MockStorage
	publisher     *recordingPublisher
	audit         *recordingAudit
	usecase       *paymentUsecase
	appointmentID string
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := memstore.New()
	store.AddDoctor(models.Doctor{
		ID:                "doctor-1",
		FirstName:         "Amina",
		LastName:          "Otieno",
		Specialization:    "Cardiology",
		AvailableDays:     "Mon,Tue,Wed,Thu,Fri",
		AvailableTimeFrom: "09:00:00",
		AvailableTimeTo:   "17:00:00",
		MaxPatientsPerDay: 10,
		ConsultationFee:   1500,
	})
	store.AddPatient(models.Patient{ID: "patient-1", UserID: "user-patient", FirstName: "Jane", LastName: "Wanjiru"})
	store.AddPatient(models.Patient{ID: "patient-2", UserID: "user-other", FirstName: "Brian", LastName: "Kamau"})

	appointment := &models.Appointment{
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		AppointmentDate: "2026-03-03",
		AppointmentTime: "10:00:00",
		Status:          constvars.AppointmentStatusPendingPayment,
		PaymentStatus:   constvars.PaymentStatusUnpaid,
		ConsultationFee: 1500,
		ReasonForVisit:  "Chest pain",
		CreatedBy:       "user-patient",
	}
	require.NoError(t, store.AppointmentRepository().Create(context.Background(), appointment))

	cfg := &config.InternalConfig{
		Mpesa: config.AppMpesa{TransactionDesc: constvars.MpesaDefaultTransactionDesc},
		Payment: config.AppPayment{
			ReconcileStaleAfter:           2 * time.Minute,
			ReconcileBatchSize:            10,
			StatusQueryLockTTL:            15 * time.Second,
			ReceiptBucketName:             "payment-receipts",
			ReceiptPresignExpiryInMinutes: 15,
			MaxPushesPerWindow:            3,
			PushWindow:                    5 * time.Minute,
		},
	}

	gateway := &MockPaymentGateway{}
	storage := &MockStorage{}
	storage.On("UploadJSON", mock.Anything, "payment-receipts", mock.Anything, mock.Anything).Return(nil)
	publisher := &recordingPublisher{}
	audit := &recordingAudit{}
	redis := memstore.NewRedis()

	reconciler := newPaymentReconciler(store, store.TransactionRepository(), store.AppointmentRepository(), publisher, storage, cfg, zap.NewNop())
	uc := &paymentUsecase{
		TransactionRepository:   store.TransactionRepository(),
		AppointmentRepository:   store.AppointmentRepository(),
		PatientRepository:       store.PatientRepository(),
		CallbackAuditRepository: audit,
		PaymentGateway:          gateway,
		Reconciler:              reconciler,
		LockService:             &redisLocker{redis: redis},
		PushLimiter:             ratelimiter.NewResourceLimiter(redis, zap.NewNop()),
		Storage:                 storage,
		InternalConfig:          cfg,
		Log:                     zap.NewNop(),
		Now:                     time.Now,
	}

	return &paymentFixture{
		store:         store,
		gateway:       gateway,
		storage:       storage,
		publisher:     publisher,
		audit:         audit,
		usecase:       uc,
		appointmentID: appointment.ID,
	}
}

func (f *paymentFixture) acceptPush(checkoutID string) {
	f.gateway.On("RequestPush", mock.Anything, mock.Anything).Return(&responses.MpesaPush{
		CheckoutRequestID: checkoutID,
		MerchantRequestID: "29115-34620561-1",
		ResponseCode:      "0",
	}, nil)
}

func (f *paymentFixture) initiateMpesa(t *testing.T) *responses.PaymentInitiation {
	t.Helper()
	initiation, err := f.usecase.InitiatePayment(context.Background(), payingPatient, &requests.InitiatePayment{
		AppointmentID: f.appointmentID,
		Amount:        1500,
		PaymentMethod: constvars.PaymentMethodMpesa,
		PhoneNumber:   "0712345678",
	})
	require.NoError(t, err)
	return initiation
}

func successCallback(checkoutID, receipt string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode":        0,
				"ResultDesc":        "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 1500.00},
						{"Name": "MpesaReceiptNumber", "Value": %q},
						{"Name": "TransactionDate", "Value": 20260302101500},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`, checkoutID, receipt))
}

func failedCallback(checkoutID string, resultCode int, desc string) []byte {
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode":        %d,
				"ResultDesc":        %q
			}
		}
	}`, checkoutID, resultCode, desc))
}

func TestMpesaHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.acceptPush("ws_CO_1")

	initiation := f.initiateMpesa(t)
	assert.Equal(t, constvars.TransactionStatusPending, initiation.Status)
	assert.Equal(t, "ws_CO_1", initiation.CheckoutRequestID)
	assert.Equal(t, constvars.PaymentSTKPushSentSuccessfully, initiation.Message)
	assert.Regexp(t, `^HMS-\d+-[0-9A-F]{8}$`, initiation.TransactionRef)

	recorded := f.store.Transaction(initiation.TransactionRef)
	assert.Equal(t, constvars.TransactionStatusPending, recorded.Status)
	assert.Equal(t, "254712345678", recorded.MpesaPhone, "phone should be stored normalized")
	f.gateway.AssertCalled(t, "RequestPush", mock.Anything, mock.MatchedBy(func(push *requests.MpesaPush) bool {
		return push.Reference == initiation.TransactionRef && push.Amount == 1500
	}))

	ack := f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_1", "QKL1234XYZ"), "196.201.214.200")
	assert.Equal(t, &responses.MpesaCallbackAck{ResultCode: 0, ResultDesc: "Accepted"}, ack)

	settled := f.store.Transaction(initiation.TransactionRef)
	assert.Equal(t, constvars.TransactionStatusSuccess, settled.Status)
	assert.Equal(t, "QKL1234XYZ", settled.MpesaReceipt)
	appointment := f.store.Appointment(f.appointmentID)
	assert.Equal(t, constvars.AppointmentStatusScheduled, appointment.Status)
	assert.Equal(t, constvars.PaymentStatusPaid, appointment.PaymentStatus)
	assert.Equal(t, 1, f.publisher.count(constvars.EventPaymentSettled))
	f.storage.AssertCalled(t, "UploadJSON", mock.Anything, "payment-receipts", "receipts/"+initiation.TransactionRef+".json", mock.Anything)
	require.Len(t, f.audit.audits, 1)
	assert.Equal(t, "ws_CO_1", f.audit.audits[0].CheckoutRequestID)

	t.Run("replayed callback changes nothing", func(t *testing.T) {
		ack := f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_1", "QKLOTHER99"), "196.201.214.200")

		assert.Equal(t, 0, ack.ResultCode)
		assert.Equal(t, "QKL1234XYZ", f.store.Transaction(initiation.TransactionRef).MpesaReceipt, "first receipt is retained")
		assert.Equal(t, 1, f.publisher.count(constvars.EventPaymentSettled))
	})

	t.Run("status view joins appointment and people", func(t *testing.T) {
		status, err := f.usecase.CheckStatus(ctx, payingPatient, initiation.TransactionRef)

		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusSuccess, status.Status)
		assert.Equal(t, "Jane Wanjiru", status.PatientName)
		assert.Equal(t, "Dr. Amina Otieno", status.DoctorName)
		assert.Equal(t, constvars.PaymentStatusPaid, status.Appointment.PaymentStatus)
		f.gateway.AssertNotCalled(t, "QueryStatus", mock.Anything, mock.Anything)
	})

	t.Run("paid appointment cannot be charged again", func(t *testing.T) {
		_, err := f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeAlreadyProcessed))
	})
}

func TestMpesaCancelledByUser(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.acceptPush("ws_CO_2")
	initiation := f.initiateMpesa(t)

	ack := f.usecase.HandleMpesaCallback(ctx, failedCallback("ws_CO_2", 1032, "Request cancelled by user"), "196.201.214.200")

	assert.Equal(t, 0, ack.ResultCode)
	assert.Equal(t, constvars.TransactionStatusFailed, f.store.Transaction(initiation.TransactionRef).Status)
	appointment := f.store.Appointment(f.appointmentID)
	assert.Equal(t, constvars.AppointmentStatusPendingPayment, appointment.Status, "appointment stays payable")
	assert.Equal(t, constvars.PaymentStatusUnpaid, appointment.PaymentStatus)
	assert.Equal(t, 1, f.publisher.count(constvars.EventPaymentFailed))

	t.Run("late success callback for a failed push is ignored", func(t *testing.T) {
		f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_2", "QKLLATE000"), "196.201.214.200")

		assert.Equal(t, constvars.TransactionStatusFailed, f.store.Transaction(initiation.TransactionRef).Status)
		assert.Equal(t, constvars.PaymentStatusUnpaid, f.store.Appointment(f.appointmentID).PaymentStatus)
	})

	t.Run("patient can retry with a new reference", func(t *testing.T) {
		retry := f.initiateMpesa(t)
		assert.NotEqual(t, initiation.TransactionRef, retry.TransactionRef)
	})
}

func TestHandleMpesaCallbackWithoutMatch(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.acceptPush("ws_CO_3")
	initiation := f.initiateMpesa(t)

	t.Run("unknown checkout id", func(t *testing.T) {
		ack := f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_unknown", "QKL0000000"), "10.0.0.1")

		assert.Equal(t, &responses.MpesaCallbackAck{ResultCode: 0, ResultDesc: "Accepted"}, ack)
		assert.Equal(t, constvars.TransactionStatusPending, f.store.Transaction(initiation.TransactionRef).Status)
		assert.Equal(t, 0, f.publisher.count(constvars.EventPaymentSettled))
	})

	t.Run("unreadable body", func(t *testing.T) {
		ack := f.usecase.HandleMpesaCallback(ctx, []byte(`{not json`), "10.0.0.1")

		assert.Equal(t, 0, ack.ResultCode)
		assert.Equal(t, constvars.TransactionStatusPending, f.store.Transaction(initiation.TransactionRef).Status)
		assert.NotEmpty(t, f.audit.audits, "raw body is audited even when it cannot be parsed")
	})
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected push fails the transaction", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.gateway.On("RequestPush", mock.Anything, mock.Anything).
			Return(nil, exceptions.ErrGatewayRejected(nil, "Invalid Access Token"))

		_, err := f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodMpesa,
			PhoneNumber:   "0712345678",
		})

		assert.True(t, exceptions.IsCode(err, exceptions.CodeGatewayRejected))
		require.Len(t, f.store.Transactions, 1)
		for _, transaction := range f.store.Transactions {
			assert.Equal(t, constvars.TransactionStatusFailed, transaction.Status)
		}
	})

	t.Run("gateway timeout surfaces as timeout", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.gateway.On("RequestPush", mock.Anything, mock.Anything).Return(nil, exceptions.ErrGatewayTimeout(nil))

		_, err := f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodMpesa,
			PhoneNumber:   "0712345678",
		})

		assert.True(t, exceptions.IsCode(err, exceptions.CodeGatewayTimeout))
	})

	t.Run("cash does not touch the gateway", func(t *testing.T) {
		f := newPaymentFixture(t)

		initiation, err := f.usecase.InitiatePayment(ctx, receptionist, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})

		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusPending, initiation.Status)
		assert.Empty(t, initiation.CheckoutRequestID)
		f.gateway.AssertNotCalled(t, "RequestPush", mock.Anything, mock.Anything)
	})

	t.Run("cancelled appointment is not payable", func(t *testing.T) {
		f := newPaymentFixture(t)
		_, err := f.store.AppointmentRepository().UpdateStatus(ctx, f.appointmentID, constvars.AppointmentStatusPendingPayment, constvars.AppointmentStatusCancelled, "")
		require.NoError(t, err)

		_, err = f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeAppointmentNotPayable))
	})

	t.Run("patients cannot pay for someone else", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.usecase.InitiatePayment(ctx, otherPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeForbidden))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.usecase.InitiatePayment(ctx, receptionist, &requests.InitiatePayment{
			AppointmentID: "appt-404",
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})

	t.Run("accepted push that cannot be recorded keeps the gateway ids in the log", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_unrecorded")
		f.usecase.TransactionRepository = unrecordedPushRepository{
			TransactionRepository: f.store.TransactionRepository(),
			err:                   exceptions.ErrPostgresDBUpdateData(fmt.Errorf("connection reset")),
		}
		core, logs := observer.New(zap.ErrorLevel)
		f.usecase.Log = zap.New(core)

		_, err := f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodMpesa,
			PhoneNumber:   "0712345678",
		})
		require.Error(t, err)

		entries := logs.FilterMessage("paymentUsecase.InitiatePayment accepted push not recorded").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "ws_CO_unrecorded", fields[constvars.LoggingCheckoutIDKey])
		assert.Equal(t, "29115-34620561-1", fields[constvars.LoggingMerchantIDKey])
		assert.NotEmpty(t, fields[constvars.LoggingReferenceKey])
	})

	t.Run("push prompts are rate limited per appointment", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_limit")
		f.usecase.Now = func() time.Time { return time.Date(2026, 3, 2, 7, 1, 0, 0, time.UTC) }

		for i := 0; i < 3; i++ {
			f.initiateMpesa(t)
		}
		_, err := f.usecase.InitiatePayment(ctx, payingPatient, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodMpesa,
			PhoneNumber:   "0712345678",
		})

		assert.True(t, exceptions.IsCode(err, exceptions.CodeRateLimited))
		f.gateway.AssertNumberOfCalls(t, "RequestPush", 3)
	})
}

func TestCheckStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("settled query transitions exactly once", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_4")
		f.gateway.On("QueryStatus", mock.Anything, "ws_CO_4").
			Return(&responses.MpesaStatusQuery{Outcome: responses.MpesaQuerySettled, ResultCode: "0"})
		initiation := f.initiateMpesa(t)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = f.usecase.CheckStatus(ctx, payingPatient, initiation.TransactionRef)
			}()
		}
		wg.Wait()

		status, err := f.usecase.CheckStatus(ctx, payingPatient, initiation.TransactionRef)
		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusSuccess, status.Status)
		assert.Equal(t, constvars.AppointmentStatusScheduled, status.Appointment.Status)
		assert.Equal(t, 1, f.publisher.count(constvars.EventPaymentSettled), "settlement must happen once")
	})

	t.Run("pending query leaves the transaction alone", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_5")
		f.gateway.On("QueryStatus", mock.Anything, "ws_CO_5").
			Return(&responses.MpesaStatusQuery{Outcome: responses.MpesaQueryPending})
		initiation := f.initiateMpesa(t)

		status, err := f.usecase.CheckStatus(ctx, payingPatient, initiation.TransactionRef)

		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusPending, status.Status)
		assert.Equal(t, constvars.PaymentStatusUnpaid, status.Appointment.PaymentStatus)
	})

	t.Run("failed query marks the transaction failed", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_6")
		f.gateway.On("QueryStatus", mock.Anything, "ws_CO_6").
			Return(&responses.MpesaStatusQuery{Outcome: responses.MpesaQueryFailed, ResultCode: "1037", ResultDesc: "DS timeout user cannot be reached"})
		initiation := f.initiateMpesa(t)

		status, err := f.usecase.CheckStatus(ctx, payingPatient, initiation.TransactionRef)

		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusFailed, status.Status)
		assert.Equal(t, constvars.AppointmentStatusPendingPayment, status.Appointment.Status)
	})

	t.Run("unknown reference", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.usecase.CheckStatus(ctx, receptionist, "HMS-0-DEADBEEF")
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("cash settles once", func(t *testing.T) {
		f := newPaymentFixture(t)
		initiation, err := f.usecase.InitiatePayment(ctx, receptionist, &requests.InitiatePayment{
			AppointmentID: f.appointmentID,
			Amount:        1500,
			PaymentMethod: constvars.PaymentMethodCash,
		})
		require.NoError(t, err)

		status, err := f.usecase.ProcessPayment(ctx, receptionist, &requests.ProcessPayment{TransactionRef: initiation.TransactionRef})
		require.NoError(t, err)
		assert.Equal(t, constvars.TransactionStatusSuccess, status.Status)
		assert.Equal(t, constvars.PaymentStatusPaid, status.Appointment.PaymentStatus)

		_, err = f.usecase.ProcessPayment(ctx, receptionist, &requests.ProcessPayment{TransactionRef: initiation.TransactionRef})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeAlreadyProcessed))
	})

	t.Run("mpesa cannot be processed by hand", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_7")
		initiation := f.initiateMpesa(t)

		_, err := f.usecase.ProcessPayment(ctx, receptionist, &requests.ProcessPayment{TransactionRef: initiation.TransactionRef})
		assert.True(t, exceptions.IsCode(err, exceptions.CodeMethodNotProcessable))
	})
}

func TestReconcilePending(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.gateway.On("RequestPush", mock.Anything, mock.Anything).Return(&responses.MpesaPush{CheckoutRequestID: "ws_CO_old", MerchantRequestID: "m-1"}, nil).Once()
	f.gateway.On("RequestPush", mock.Anything, mock.Anything).Return(&responses.MpesaPush{CheckoutRequestID: "ws_CO_new", MerchantRequestID: "m-2"}, nil).Once()
	f.gateway.On("QueryStatus", mock.Anything, "ws_CO_old").
		Return(&responses.MpesaStatusQuery{Outcome: responses.MpesaQuerySettled, ResultCode: "0"})

	old := f.initiateMpesa(t)
	fresh := f.initiateMpesa(t)
	f.store.Age(old.TransactionRef, 10*time.Minute)

	resolved, err := f.usecase.ReconcilePending(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.Equal(t, constvars.TransactionStatusSuccess, f.store.Transaction(old.TransactionRef).Status)
	assert.Equal(t, constvars.TransactionStatusPending, f.store.Transaction(fresh.TransactionRef).Status)
	f.gateway.AssertNotCalled(t, "QueryStatus", mock.Anything, "ws_CO_new")
}

func TestGetReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("pending transaction has no receipt", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_8")
		initiation := f.initiateMpesa(t)

		_, err := f.usecase.GetReceipt(ctx, payingPatient, initiation.TransactionRef)
		assert.True(t, exceptions.IsCode(err, exceptions.CodeNotFound))
	})

	t.Run("settled transaction returns a presigned url", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_9")
		initiation := f.initiateMpesa(t)
		f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_9", "QKL9999999"), "196.201.214.200")

		objectName := "receipts/" + initiation.TransactionRef + ".json"
		f.storage.On("ObjectExists", mock.Anything, "payment-receipts", objectName).Return(true, nil)
		f.storage.On("GetObjectUrlWithExpiryTime", mock.Anything, "payment-receipts", objectName, 15*time.Minute).
			Return("https://minio.local/payment-receipts/"+objectName+"?X-Amz-Signature=abc", nil)

		receipt, err := f.usecase.GetReceipt(ctx, payingPatient, initiation.TransactionRef)

		require.NoError(t, err)
		assert.Contains(t, receipt.URL, objectName)
		assert.Equal(t, initiation.TransactionRef, receipt.TransactionRef)
	})

	t.Run("missing object is written before presigning", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.acceptPush("ws_CO_10")
		initiation := f.initiateMpesa(t)
		f.usecase.HandleMpesaCallback(ctx, successCallback("ws_CO_10", "QKL1010101"), "196.201.214.200")

		objectName := "receipts/" + initiation.TransactionRef + ".json"
		f.storage.On("ObjectExists", mock.Anything, "payment-receipts", objectName).Return(false, nil)
		f.storage.On("GetObjectUrlWithExpiryTime", mock.Anything, "payment-receipts", objectName, 15*time.Minute).Return("https://minio.local/x", nil)

		_, err := f.usecase.GetReceipt(ctx, payingPatient, initiation.TransactionRef)

		require.NoError(t, err)
		f.storage.AssertNumberOfCalls(t, "UploadJSON", 2)
	})
}
