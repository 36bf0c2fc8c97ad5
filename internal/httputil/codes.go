package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeCooldownActive     = "COOLDOWN_ACTIVE"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodeNotFound           = "NOT_FOUND"

	// auth
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodePasswordTooLong    = "PASSWORD_TOO_LONG"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidOTP         = "INVALID_OTP"
	CodeOTPDeliveryFailed  = "OTP_DELIVERY_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"

	// health
	CodeInvalidDate  = "INVALID_DATE"
	CodeInvalidValue = "INVALID_VALUE"

	// integrations
	CodeGoogleAuthRequired = "GOOGLE_AUTH_REQUIRED"
	CodeOAuthExchange      = "OAUTH_EXCHANGE_FAILED"

	// auth middleware
	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID = "INVALID_TOKEN_USER_ID"
)
