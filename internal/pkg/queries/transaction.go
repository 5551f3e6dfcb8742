package queries

const (
	transactionColumns = `
		t.id, t.transaction_ref, t.appointment_id, t.patient_id, t.amount, t.payment_method, t.status,
		COALESCE(t.mpesa_checkout_id, ''), COALESCE(t.mpesa_merchant_id, ''),
		COALESCE(t.mpesa_receipt, ''), COALESCE(t.mpesa_phone, ''), t.created_at, t.updated_at
	`

	InsertTransaction = `
		INSERT INTO transactions (transaction_ref, appointment_id, patient_id, amount, payment_method, status, mpesa_phone)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at, updated_at
	`

	AttachTransactionGatewayIDs = `
		UPDATE transactions
		SET mpesa_checkout_id = $1, mpesa_merchant_id = $2, updated_at = NOW()
		WHERE transaction_ref = $3
	`

	// Both transitions only leave Pending, which keeps replays and late callbacks harmless.
	MarkTransactionSuccess = `
		UPDATE transactions
		SET status = 'Success',
			mpesa_receipt = COALESCE(mpesa_receipt, NULLIF($1, '')),
			mpesa_phone   = COALESCE(NULLIF($2, ''), mpesa_phone),
			updated_at    = NOW()
		WHERE transaction_ref = $3 AND status = 'Pending'
	`

	MarkTransactionFailed = `
		UPDATE transactions
		SET status = 'Failed', updated_at = NOW()
		WHERE transaction_ref = $1 AND status = 'Pending'
	`

	GetTransactionByReference = `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.transaction_ref = $1`

	GetTransactionByCheckoutID = `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.mpesa_checkout_id = $1`

	GetTransactionViewByReference = `
		SELECT ` + transactionColumns + `,
			a.appointment_date::text, a.appointment_time::text, a.status, a.payment_status,
			a.consultation_fee, a.reason_for_visit,
			p.first_name, p.last_name, d.first_name, d.last_name, d.specialization
		FROM transactions t
		JOIN appointments a ON a.id = t.appointment_id
		JOIN patients p ON p.id = t.patient_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE t.transaction_ref = $1
	`

	GetStalePendingTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.status = 'Pending' AND t.mpesa_checkout_id IS NOT NULL AND t.created_at < $1
		ORDER BY t.created_at
		LIMIT $2
	`
)
