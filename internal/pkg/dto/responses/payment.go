package responses

import "time"

type PaymentInitiation struct {
	TransactionRef    string  `json:"transactionRef"`
	Status            string  `json:"status"`
	Amount            float64 `json:"amount"`
	PaymentMethod     string  `json:"paymentMethod"`
	CheckoutRequestID string  `json:"checkoutRequestId,omitempty"`
	Message           string  `json:"message"`
}

type PaymentStatus struct {
	TransactionRef    string             `json:"transactionRef"`
	Status            string             `json:"status"`
	Amount            float64            `json:"amount"`
	PaymentMethod     string             `json:"paymentMethod"`
	CheckoutRequestID string             `json:"checkoutRequestId,omitempty"`
	MpesaReceipt      string             `json:"mpesaReceipt,omitempty"`
	MpesaPhone        string             `json:"mpesaPhone,omitempty"`
	PatientName       string             `json:"patientName"`
	DoctorName        string             `json:"doctorName"`
	Specialization    string             `json:"specialization"`
	Appointment       PaymentAppointment `json:"appointment"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type PaymentAppointment struct {
	AppointmentID   string  `json:"appointmentId"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	ConsultationFee float64 `json:"consultationFee"`
	ReasonForVisit  string  `json:"reasonForVisit"`
}

type PaymentReceipt struct {
	TransactionRef string    `json:"transactionRef"`
	URL            string    `json:"url"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// MpesaCallbackAck is the fixed acknowledgment Daraja expects from the callback URL.
type MpesaCallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

type MpesaPush struct {
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	PhoneNumber         string `json:"-"`
}

const (
	MpesaQuerySettled = "settled"
	MpesaQueryFailed  = "failed"
	MpesaQueryPending = "pending"
)

// MpesaStatusQuery is the interpreted outcome of an STK push query.
type MpesaStatusQuery struct {
	Outcome    string
	ResultCode string
	ResultDesc string
	Raw        string
}

func (q *MpesaStatusQuery) Settled() bool {
	return q.Outcome == MpesaQuerySettled
}

func (q *MpesaStatusQuery) Failed() bool {
	return q.Outcome == MpesaQueryFailed
}

func (q *MpesaStatusQuery) Pending() bool {
	return q.Outcome == MpesaQueryPending
}
