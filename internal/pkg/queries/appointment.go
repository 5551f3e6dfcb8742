package queries

const (
	activeAppointmentStatuses = `('PendingPayment', 'Scheduled', 'Completed')`

	appointmentColumns = `
		a.id, a.patient_id, a.doctor_id, a.appointment_date::text, a.appointment_time::text,
		a.status, a.payment_status, a.consultation_fee, a.reason_for_visit,
		COALESCE(a.symptoms, ''), COALESCE(a.notes, ''), a.created_by, a.created_at, a.updated_at
	`

	InsertAppointment = `
		INSERT INTO appointments (
			patient_id, doctor_id, appointment_date, appointment_time, status, payment_status,
			consultation_fee, reason_for_visit, symptoms, notes, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)
		RETURNING id, created_at, updated_at
	`

	CountActiveAppointmentsAtSlot = `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
		AND status IN ` + activeAppointmentStatuses

	CountActiveAppointmentsOnDate = `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2
		AND status IN ` + activeAppointmentStatuses

	GetBookedAppointmentTimes = `
		SELECT appointment_time::text
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2
		AND status IN ` + activeAppointmentStatuses + `
		ORDER BY appointment_time
	`

	GetAppointmentByID = `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`

	GetAppointmentByIDForUpdate = `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1 FOR UPDATE`

	appointmentDetailSelect = `
		SELECT ` + appointmentColumns + `,
			p.first_name, p.last_name, COALESCE(p.phone, ''),
			d.first_name, d.last_name, d.specialization
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id
	`

	GetAppointmentDetailByID = appointmentDetailSelect + ` WHERE a.id = $1`

	// GetAppointmentDetails is completed with a WHERE clause built from the filter.
	GetAppointmentDetails = appointmentDetailSelect

	OrderAppointmentsByScheduleDesc = ` ORDER BY a.appointment_date DESC, a.appointment_time DESC`

	UpdateAppointmentStatus = `
		UPDATE appointments
		SET status = $1, notes = COALESCE(NULLIF($2, ''), notes), updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	// MarkAppointmentPaid never moves an appointment out of Completed or Cancelled.
	MarkAppointmentPaid = `
		UPDATE appointments
		SET payment_status = 'Paid',
			status     = CASE WHEN status = 'PendingPayment' THEN 'Scheduled' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
	`
)
