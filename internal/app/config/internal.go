package config

import "time"

type InternalConfig struct {
	App     App
	JWT     AppJWT
	Mpesa   AppMpesa
	Payment AppPayment
	Booking AppBooking
	MongoDB AppMongoDB
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	Timezone                   string
	EndpointPrefix             string
	MaxRequests                int
	ShutdownTimeoutInSeconds   int
	RequestTimeoutInSeconds    int
	RequestBodyLimitInMegabyte int
}

type AppJWT struct {
	Secret string
}

// AppMpesa is handed to the Daraja client as a value; nothing else reads it.
type AppMpesa struct {
	Environment       string
	BaseUrl           string
	ConsumerKey       string
	ConsumerSecret    string
	Passkey           string
	Shortcode         string
	CallbackURL       string
	TransactionDesc   string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	TokenExpiryMargin time.Duration
}

type AppPayment struct {
	ReconcileCronSpec             string
	ReconcileStaleAfter           time.Duration
	ReconcileBatchSize            int
	ReconcileLeaderLockTTL        time.Duration
	StatusQueryLockTTL            time.Duration
	ReceiptBucketName             string
	ReceiptPresignExpiryInMinutes int
	EventsQueue                   string
	MaxPushesPerWindow            int
	PushWindow                    time.Duration
}

type AppBooking struct {
	SlotGranularityInMinutes int
}

type AppMongoDB struct {
	CallbackAuditCollection string
}
