package constvars

const (
	MpesaEnvSandbox    = "sandbox"
	MpesaEnvProduction = "production"

	MpesaSandboxBaseUrl    = "https://sandbox.safaricom.co.ke"
	MpesaProductionBaseUrl = "https://api.safaricom.co.ke"

	MpesaOAuthPath    = "/oauth/v1/generate?grant_type=client_credentials"
	MpesaSTKPushPath  = "/mpesa/stkpush/v1/processrequest"
	MpesaSTKQueryPath = "/mpesa/stkpushquery/v1/query"

	MpesaTransactionTypePayBill = "CustomerPayBillOnline"
	MpesaTimestampFormat        = "20060102150405"
	MpesaDefaultShortcode       = "174379"
	MpesaDefaultTransactionDesc = "Hospital Consultation Payment"
	MpesaCountryCode            = "254"
	MpesaRegion                 = "KE"

	MpesaResponseCodeAccepted = "0"
	MpesaResultCodeSuccess    = "0"
	MpesaResultCodePending    = "pending"

	MpesaCallbackItemReceipt = "MpesaReceiptNumber"
	MpesaCallbackItemPhone   = "PhoneNumber"

	MpesaCallbackAckResultDesc = "Accepted"
)
