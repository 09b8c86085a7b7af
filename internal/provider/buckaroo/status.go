package buckaroo

import (
	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/gateway"
)

// MapStatus maps any gateway status code to a terminal payment status.
// Codes that are neither success nor a cancellation are errors.
func MapStatus(code int) payment.Status {
	switch {
	case isSuccess(code):
		return payment.StatusCaptured
	case isCancelled(code):
		return payment.StatusCancelled
	default:
		return payment.StatusErrored
	}
}

func isSuccess(code int) bool {
	return code == gateway.StatusSuccess
}

func isCancelled(code int) bool {
	return code == gateway.StatusCancelledByUser || code == gateway.StatusCancelledByMerchant
}
