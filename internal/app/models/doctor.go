package models

type Doctor struct {
	ID                string  `json:"doctorId"`
	UserID            string  `json:"userId,omitempty"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Specialization    string  `json:"specialization"`
	AvailableDays     string  `json:"availableDays"`
	AvailableTimeFrom string  `json:"availableTimeFrom"`
	AvailableTimeTo   string  `json:"availableTimeTo"`
	MaxPatientsPerDay int     `json:"maxPatientsPerDay"`
	ConsultationFee   float64 `json:"consultationFee"`
}

func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}
