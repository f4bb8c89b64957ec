package services

import (
	"errors"
	"fmt"

	"salonloyalty/internal/interfaces"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

var (
	ErrUnauthenticated  = errorx.Wrap(errors.New("unauthenticated"), errorx.Authn)
	ErrPermissionDenied = errorx.Wrap(errors.New("permission denied"), errorx.Authz)
	ErrNotFound         = errorx.Wrap(errors.New("not found"), errorx.NotExist)
	ErrInvalidArgument  = errorx.Wrap(errors.New("invalid argument"), errorx.Invalid)
	ErrAlreadyApproved  = errorx.Wrap(errors.New("claim already approved"), errorx.Exist)
	ErrNotPending       = errorx.Wrap(errors.New("claim not pending"), errorx.Exist)
	ErrDeliveryFailure  = errorx.Wrap(errors.New("delivery failure"), errorx.Service)
	ErrConflict         = errorx.Wrap(errors.New("conflict"), errorx.Exist)
	ErrRateLimited      = errorx.Wrap(errors.New("rate limited"), errorx.RateLimiting)

	ErrInsufficientPoints = wrapf(errorx.Invalid, ErrInvalidArgument, "insufficient points")
	ErrActionUnavailable  = wrapf(errorx.Invalid, ErrInvalidArgument, "reward action unavailable")
	ErrVoucherUnavailable = wrapf(errorx.Invalid, ErrInvalidArgument, "birthday voucher unavailable")
	ErrJobRunning         = wrapf(errorx.Exist, ErrConflict, "birthday job already running")
)

// wrapf adds detail to a classified error. The result is still an *errorx.Error of kind,
// so httpx.RestAbort picks the status from it and errors.Is still matches the cause.
func wrapf(kind errorx.Kind, cause error, format string, args ...any) *errorx.Error {
	return errorx.Wrap(fmt.Errorf("%w: %s", cause, fmt.Sprintf(format, args...)), kind)
}

func invalid(format string, args ...any) error {
	return wrapf(errorx.Invalid, ErrInvalidArgument, format, args...)
}

// InvalidArgument classifies a request decoding failure the same way service validation does.
func InvalidArgument(err error) error {
	return wrapf(errorx.Invalid, ErrInvalidArgument, "%v", err)
}

// storeErr names the missing record; other store errors pass through so conflicts stay retryable.
func storeErr(err error, what string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return wrapf(errorx.NotExist, ErrNotFound, "%s", what)
	}
	return err
}
