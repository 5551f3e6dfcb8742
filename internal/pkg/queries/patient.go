package queries

const (
	GetPatientByID = `
		SELECT id, COALESCE(user_id, ''), first_name, last_name, COALESCE(phone, '')
		FROM patients
		WHERE id = $1
	`

	GetPatientByUserID = `
		SELECT id, COALESCE(user_id, ''), first_name, last_name, COALESCE(phone, '')
		FROM patients
		WHERE user_id = $1
	`
)
