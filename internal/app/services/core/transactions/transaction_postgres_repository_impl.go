package transactions

import (
	"context"
	"database/sql"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"
)

type transactionPostgresRepository struct {
	Transactor contracts.Transactor
}

func NewTransactionPostgresRepository(transactor contracts.Transactor) contracts.TransactionRepository {
	return &transactionPostgresRepository{
		Transactor: transactor,
	}
}

func (repo *transactionPostgresRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, queries.InsertTransaction,
		transaction.Reference,
		transaction.AppointmentID,
		transaction.PatientID,
		transaction.Amount,
		transaction.PaymentMethod,
		transaction.Status,
		transaction.MpesaPhone,
	).Scan(
		&transaction.ID,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	)
	if err != nil {
		return exceptions.ErrPostgresDBInsertData(err)
	}
	return nil
}

func (repo *transactionPostgresRepository) AttachGatewayIDs(ctx context.Context, reference, checkoutID, merchantID string) error {
	_, err := repo.Transactor.Executor(ctx).ExecContext(ctx, queries.AttachTransactionGatewayIDs, checkoutID, merchantID, reference)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (repo *transactionPostgresRepository) MarkSuccess(ctx context.Context, reference, receipt, phone string) (bool, error) {
	return repo.transition(ctx, queries.MarkTransactionSuccess, receipt, phone, reference)
}

func (repo *transactionPostgresRepository) MarkFailed(ctx context.Context, reference string) (bool, error) {
	return repo.transition(ctx, queries.MarkTransactionFailed, reference)
}

func (repo *transactionPostgresRepository) transition(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := repo.Transactor.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBUpdateData(err)
	}
	return affected == 1, nil
}

func (repo *transactionPostgresRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return repo.findOne(ctx, queries.GetTransactionByReference, reference)
}

func (repo *transactionPostgresRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*models.Transaction, error) {
	return repo.findOne(ctx, queries.GetTransactionByCheckoutID, checkoutID)
}

func (repo *transactionPostgresRepository) findOne(ctx context.Context, query, arg string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, query, arg).Scan(transactionScanTargets(&transaction)...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &transaction, nil
}

func (repo *transactionPostgresRepository) FindViewByReference(ctx context.Context, reference string) (*models.TransactionView, error) {
	var view models.TransactionView
	targets := append(transactionScanTargets(&view.Transaction),
		&view.AppointmentDate,
		&view.AppointmentTime,
		&view.AppointmentStatus,
		&view.PaymentStatus,
		&view.ConsultationFee,
		&view.ReasonForVisit,
		&view.PatientFirstName,
		&view.PatientLastName,
		&view.DoctorFirstName,
		&view.DoctorLastName,
		&view.Specialization,
	)
	err := repo.Transactor.Executor(ctx).QueryRowContext(ctx, queries.GetTransactionViewByReference, reference).Scan(targets...)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &view, nil
}

func (repo *transactionPostgresRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Transaction, error) {
	rows, err := repo.Transactor.Executor(ctx).QueryContext(ctx, queries.GetStalePendingTransactions, createdBefore, limit)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		if err := rows.Scan(transactionScanTargets(&transaction)...); err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBIterateDataset(err)
	}
	return transactions, nil
}

func transactionScanTargets(transaction *models.Transaction) []interface{} {
	return []interface{}{
		&transaction.ID,
		&transaction.Reference,
		&transaction.AppointmentID,
		&transaction.PatientID,
		&transaction.Amount,
		&transaction.PaymentMethod,
		&transaction.Status,
		&transaction.MpesaCheckoutID,
		&transaction.MpesaMerchantID,
		&transaction.MpesaReceipt,
		&transaction.MpesaPhone,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
	}
}
