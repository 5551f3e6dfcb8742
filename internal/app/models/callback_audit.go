package models

import "time"

type CallbackAudit struct {
	CheckoutRequestID string    `bson:"checkout_request_id"`
	MerchantRequestID string    `bson:"merchant_request_id"`
	ResultCode        string    `bson:"result_code"`
	ResultDesc        string    `bson:"result_desc"`
	RawBody           string    `bson:"raw_body"`
	RemoteAddr        string    `bson:"remote_addr"`
	ReceivedAt        time.Time `bson:"received_at"`
}
