package zerror

// Status classifies a ZError independently of any transport.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusBadRequest
	StatusValidationFailed
	StatusUnprocessableEntity
	StatusNotFound
	StatusInternalServerError
)

func (s Status) String() string {
	switch s {
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusValidationFailed:
		return "VALIDATION_FAILED"
	case StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "UNKNOWN"
	}
}
