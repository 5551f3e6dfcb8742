package requests

type CreateAppointment struct {
	PatientID       string `json:"patientId"`
	DoctorID        string `json:"doctorId" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointmentTime" validate:"required,clock_time"`
	ReasonForVisit  string `json:"reasonForVisit" validate:"required,max=500"`
	Symptoms        string `json:"symptoms" validate:"max=1000"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type AvailableSlotsQuery struct {
	DoctorID string `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

type ListAppointments struct {
	Status   string `json:"status" validate:"omitempty,appointment_status"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FromDate string `json:"fromDate" validate:"omitempty,datetime=2006-01-02"`
	ToDate   string `json:"toDate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateAppointment struct {
	Status string `json:"status" validate:"required,appointment_status"`
	Notes  string `json:"notes" validate:"max=1000"`
}
