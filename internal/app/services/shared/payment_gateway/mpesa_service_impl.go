package payment_gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	mpesaServiceInstance contracts.PaymentGatewayService
	onceMpesaService     sync.Once
)

type mpesaService struct {
	Config     config.AppMpesa
	BaseUrl    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Redis      contracts.RedisRepository
	Log        *zap.Logger
	Now        func() time.Time
	location   *time.Location
}

// NewMpesaService builds the Daraja client from an injected config value.
func NewMpesaService(mpesaConfig config.AppMpesa, redisRepo contracts.RedisRepository, logger *zap.Logger) contracts.PaymentGatewayService {
	onceMpesaService.Do(func() {
		mpesaServiceInstance = newMpesaService(mpesaConfig, redisRepo, logger)
	})
	return mpesaServiceInstance
}

func newMpesaService(mpesaConfig config.AppMpesa, redisRepo contracts.RedisRepository, logger *zap.Logger) *mpesaService {
	baseUrl := mpesaConfig.BaseUrl
	if baseUrl == "" {
		baseUrl = constvars.MpesaSandboxBaseUrl
		if mpesaConfig.Environment == constvars.MpesaEnvProduction {
			baseUrl = constvars.MpesaProductionBaseUrl
		}
	}

	limit := rate.Inf
	if mpesaConfig.RequestsPerSecond > 0 {
		limit = rate.Limit(mpesaConfig.RequestsPerSecond)
	}

	location, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		location = time.FixedZone("EAT", 3*60*60)
	}

	return &mpesaService{
		Config:     mpesaConfig,
		BaseUrl:    strings.TrimRight(baseUrl, "/"),
		HTTPClient: &http.Client{Timeout: mpesaConfig.RequestTimeout},
		Limiter:    rate.NewLimiter(limit, 1),
		Redis:      redisRepo,
		Log:        logger,
		Now:        time.Now,
		location:   location,
	}
}

func (s *mpesaService) Authenticate(ctx context.Context) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if s.Config.ConsumerKey == "" || s.Config.ConsumerSecret == "" {
		return "", exceptions.ErrGatewayAuth(errors.New("mpesa consumer key or secret not configured"))
	}

	if token := s.cachedToken(ctx); token != "" {
		return token, nil
	}

	s.Log.Info("mpesaService.Authenticate requesting access token",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, s.BaseUrl+constvars.MpesaOAuthPath, nil)
	if err != nil {
		return "", exceptions.ErrCreateHTTPRequest(err)
	}
	req.SetBasicAuth(s.Config.ConsumerKey, s.Config.ConsumerSecret)

	var tokenResponse accessTokenResponse
	statusCode, _, err := s.do(ctx, req, &tokenResponse)
	if err != nil {
		return "", err
	}
	if statusCode >= 500 {
		return "", exceptions.ErrGatewayTimeout(fmt.Errorf("oauth endpoint returned %d", statusCode))
	}
	if statusCode != constvars.StatusOK || tokenResponse.AccessToken == "" {
		return "", exceptions.ErrGatewayAuth(fmt.Errorf("oauth endpoint returned %d", statusCode))
	}

	s.cacheToken(ctx, tokenResponse)
	return tokenResponse.AccessToken, nil
}

func (s *mpesaService) RequestPush(ctx context.Context, request *requests.MpesaPush) (*responses.MpesaPush, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("mpesaService.RequestPush called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, request.Reference),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	phone := utils.NormalizeMpesaPhone(request.PhoneNumber)
	if err := utils.ValidateMpesaPhone(phone); err != nil {
		return nil, exceptions.ErrInvalidPhoneNumber(err, request.PhoneNumber)
	}

	token, err := s.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	description := request.Description
	if description == "" {
		description = s.Config.TransactionDesc
	}

	timestamp := s.timestamp()
	payload := stkPushPayload{
		BusinessShortCode: s.Config.Shortcode,
		Password:          s.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   constvars.MpesaTransactionTypePayBill,
		Amount:            int64(math.Ceil(request.Amount)),
		PartyA:            phone,
		PartyB:            s.Config.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       s.Config.CallbackURL,
		AccountReference:  request.Reference,
		TransactionDesc:   description,
	}

	req, err := s.newJSONRequest(ctx, constvars.MpesaSTKPushPath, token, payload)
	if err != nil {
		return nil, err
	}

	var pushResponse stkPushResponse
	statusCode, _, err := s.do(ctx, req, &pushResponse)
	if err != nil {
		return nil, err
	}

	switch {
	case statusCode == constvars.StatusUnauthorized:
		s.dropCachedToken(ctx)
		return nil, exceptions.ErrGatewayAuth(fmt.Errorf("stk push token rejected: %s", pushResponse.ErrorMessage))
	case statusCode >= 500 && pushResponse.ErrorMessage == "":
		return nil, exceptions.ErrGatewayTimeout(fmt.Errorf("stk push returned %d", statusCode))
	case statusCode != constvars.StatusOK || pushResponse.ResponseCode.String() != constvars.MpesaResponseCodeAccepted:
		reason := pushResponse.ErrorMessage
		if reason == "" {
			reason = pushResponse.ResponseDescription
		}
		s.Log.Warn("mpesaService.RequestPush rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, request.Reference),
			zap.Int(constvars.LoggingStatusCodeKey, statusCode),
			zap.String(constvars.LoggingErrorCodeKey, pushResponse.ErrorCode),
			zap.String(constvars.LoggingErrorMessageKey, reason),
		)
		return nil, exceptions.ErrGatewayRejected(fmt.Errorf("stk push returned %d code %s", statusCode, pushResponse.ResponseCode), reason)
	}

	s.Log.Info("mpesaService.RequestPush accepted",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, request.Reference),
		zap.String(constvars.LoggingCheckoutIDKey, pushResponse.CheckoutRequestID),
		zap.String(constvars.LoggingMerchantIDKey, pushResponse.MerchantRequestID),
	)

	return &responses.MpesaPush{
		CheckoutRequestID:   pushResponse.CheckoutRequestID,
		MerchantRequestID:   pushResponse.MerchantRequestID,
		ResponseCode:        pushResponse.ResponseCode.String(),
		ResponseDescription: pushResponse.ResponseDescription,
		CustomerMessage:     pushResponse.CustomerMessage,
		PhoneNumber:         phone,
	}, nil
}

func (s *mpesaService) QueryStatus(ctx context.Context, checkoutID string) *responses.MpesaStatusQuery {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("mpesaService.QueryStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCheckoutIDKey, checkoutID),
	)

	pending := func(reason string) *responses.MpesaStatusQuery {
		s.Log.Info("mpesaService.QueryStatus treated as pending",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCheckoutIDKey, checkoutID),
			zap.String(constvars.LoggingResultDescKey, reason),
		)
		return &responses.MpesaStatusQuery{
			Outcome:    responses.MpesaQueryPending,
			ResultCode: constvars.MpesaResultCodePending,
			ResultDesc: reason,
		}
	}

	token, err := s.Authenticate(ctx)
	if err != nil {
		return pending(err.Error())
	}

	timestamp := s.timestamp()
	payload := stkQueryPayload{
		BusinessShortCode: s.Config.Shortcode,
		Password:          s.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutID,
	}

	req, err := s.newJSONRequest(ctx, constvars.MpesaSTKQueryPath, token, payload)
	if err != nil {
		return pending(err.Error())
	}

	var queryResponse stkQueryResponse
	statusCode, raw, err := s.do(ctx, req, &queryResponse)
	if err != nil {
		return pending(err.Error())
	}
	if statusCode == constvars.StatusUnauthorized {
		s.dropCachedToken(ctx)
	}
	if statusCode != constvars.StatusOK || queryResponse.ResultCode == "" {
		reason := queryResponse.ErrorMessage
		if reason == "" {
			reason = fmt.Sprintf("query returned %d without a result", statusCode)
		}
		return pending(reason)
	}

	outcome := responses.MpesaQueryFailed
	if queryResponse.ResultCode.String() == constvars.MpesaResultCodeSuccess {
		outcome = responses.MpesaQuerySettled
	}
	return &responses.MpesaStatusQuery{
		Outcome:    outcome,
		ResultCode: queryResponse.ResultCode.String(),
		ResultDesc: queryResponse.ResultDesc,
		Raw:        string(raw),
	}
}

func (s *mpesaService) newJSONRequest(ctx context.Context, path, token string, payload interface{}) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, s.BaseUrl+path, bytes.NewReader(body))
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderAuthorization, constvars.BearerPrefix+token)
	return req, nil
}

// do waits for the throttle, sends req and decodes any JSON body into out.
// Transport failures and deadlines surface as GatewayTimeout.
func (s *mpesaService) do(ctx context.Context, req *http.Request, out interface{}) (int, []byte, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return 0, nil, exceptions.ErrGatewayTimeout(err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, exceptions.ErrGatewayTimeout(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, exceptions.ErrGatewayTimeout(err)
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			s.Log.Warn("mpesaService.do unreadable response body",
				zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
				zap.Error(err),
			)
		}
	}
	return resp.StatusCode, raw, nil
}

func (s *mpesaService) cachedToken(ctx context.Context) string {
	cached, err := s.Redis.Get(ctx, constvars.CacheKeyMpesaAccessToken)
	if err != nil || cached == "" {
		return ""
	}
	var token string
	if err := json.Unmarshal([]byte(cached), &token); err != nil {
		return ""
	}
	return token
}

func (s *mpesaService) cacheToken(ctx context.Context, tokenResponse accessTokenResponse) {
	expiresIn, err := strconv.Atoi(tokenResponse.ExpiresIn.String())
	if err != nil {
		return
	}
	ttl := time.Duration(expiresIn)*time.Second - s.Config.TokenExpiryMargin
	if ttl <= 0 {
		return
	}
	if err := s.Redis.Set(ctx, constvars.CacheKeyMpesaAccessToken, tokenResponse.AccessToken, ttl); err != nil {
		s.Log.Warn("mpesaService.cacheToken failed", zap.Error(err))
	}
}

func (s *mpesaService) dropCachedToken(ctx context.Context) {
	if err := s.Redis.Delete(ctx, constvars.CacheKeyMpesaAccessToken); err != nil {
		s.Log.Warn("mpesaService.dropCachedToken failed", zap.Error(err))
	}
}

func (s *mpesaService) timestamp() string {
	return s.Now().In(s.location).Format(constvars.MpesaTimestampFormat)
}

// password is base64(shortcode + passkey + timestamp).
func (s *mpesaService) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(s.Config.Shortcode + s.Config.Passkey + timestamp))
}
