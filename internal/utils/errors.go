package utils

// API error codes returned in the error envelope.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidID          = "INVALID_ID"
	CodeInvalidCategory    = "INVALID_CATEGORY"
	CodeInvalidSubCategory = "INVALID_SUB_CATEGORY"
	CodeImageRequired      = "IMAGE_REQUIRED"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeSubscriberNotFound = "SUBSCRIBER_NOT_FOUND"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)
