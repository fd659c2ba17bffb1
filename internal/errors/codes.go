package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationTextTooLong   ErrorCode = "VALIDATION_005"
)

// Detection error codes (DETECTION_*)
const (
	DetectionProcessingFailed ErrorCode = "DETECTION_001"
	DetectionInputEmpty       ErrorCode = "DETECTION_002"
)

// File upload error codes (UPLOAD_*)
const (
	UploadMissingFile     ErrorCode = "UPLOAD_001"
	UploadFileTooLarge    ErrorCode = "UPLOAD_002"
	UploadUnsupportedType ErrorCode = "UPLOAD_003"
	UploadReadFailed      ErrorCode = "UPLOAD_004"
)

// OCR error codes (OCR_*)
const (
	OCRUnavailable      ErrorCode = "OCR_001"
	OCRRecognitionError ErrorCode = "OCR_002"
	OCRTimeout          ErrorCode = "OCR_003"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemServiceUnavailable ErrorCode = "SYSTEM_002"
	SystemConfigurationError ErrorCode = "SYSTEM_003"
	SystemUnexpectedError    ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationTextTooLong:   "Text input exceeds the maximum allowed length",

	// Detection errors
	DetectionProcessingFailed: "Amount detection failed to process the input",
	DetectionInputEmpty:       "Input text is empty",

	// Upload errors
	UploadMissingFile:     "Image file is required",
	UploadFileTooLarge:    "Uploaded file exceeds the maximum allowed size",
	UploadUnsupportedType: "Unsupported file type. Allowed types: JPEG, PNG, GIF, PDF",
	UploadReadFailed:      "Failed to read the uploaded file",

	// OCR errors
	OCRUnavailable:      "Text recognition is not available",
	OCRRecognitionError: "Failed to extract text from the uploaded image",
	OCRTimeout:          "Text recognition timed out",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
