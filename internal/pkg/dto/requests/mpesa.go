package requests

import "github.com/goccy/go-json"

// MpesaCallback is the body Daraja posts to the STK push callback URL.
type MpesaCallback struct {
	Body MpesaCallbackBody `json:"Body"`
}

type MpesaCallbackBody struct {
	StkCallback MpesaStkCallback `json:"stkCallback"`
}

type MpesaStkCallback struct {
	MerchantRequestID string                 `json:"MerchantRequestID"`
	CheckoutRequestID string                 `json:"CheckoutRequestID"`
	ResultCode        json.Number            `json:"ResultCode"`
	ResultDesc        string                 `json:"ResultDesc"`
	CallbackMetadata  *MpesaCallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type MpesaCallbackMetadata struct {
	Item []MpesaCallbackItem `json:"Item"`
}

type MpesaCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// MpesaPush is what the payment flow hands to the gateway client; phone is normalized by the client.
type MpesaPush struct {
	PhoneNumber string
	Amount      float64
	Reference   string
	Description string
}
