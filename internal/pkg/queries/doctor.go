package queries

const (
	doctorColumns = `
		id, COALESCE(user_id, ''), first_name, last_name, specialization, available_days,
		available_time_from::text, available_time_to::text, max_patients_per_day, consultation_fee
	`

	GetDoctorByID = `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`

	// Row lock serializes concurrent bookings against the same doctor.
	GetDoctorByIDForUpdate = `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1 FOR UPDATE`

	GetDoctorByUserID = `SELECT ` + doctorColumns + ` FROM doctors WHERE user_id = $1`
)
