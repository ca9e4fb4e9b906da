package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrLotUnavailable      = NewDomainError("LOT_UNAVAILABLE", "Lot is not available for sale")
)

// Warning codes for non-fatal recalculation findings. These are reported on
// pipeline results and never abort the enclosing transaction.
const (
	WarnInvalidSchedule            = "INVALID_SCHEDULE"
	WarnAllocationOverflow         = "ALLOCATION_OVERFLOW"
	WarnRedistributionInconsistent = "REDISTRIBUTION_INCONSISTENT"
)

// Warning is a non-fatal finding produced while recalculating a plan
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewWarning creates a new warning
func NewWarning(code, message string) Warning {
	return Warning{Code: code, Message: message}
}
