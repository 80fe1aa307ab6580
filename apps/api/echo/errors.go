package echoapi

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/ledger"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errInvalidID     = echo.NewHTTPError(http.StatusBadRequest, "invalid ID")
)

// errStatus maps domain errors to response codes.
var errStatus = map[error]int{
	ledger.ErrInvalidDate:          http.StatusBadRequest,
	ledger.ErrNegativeAmount:       http.StatusBadRequest,
	school.ErrClassNotFound:        http.StatusBadRequest,
	school.ErrUnknownTransportTier: http.StatusBadRequest,
	fee.ErrInvalidStatus:           http.StatusBadRequest,
	user.ErrInvalidCredentials:     http.StatusUnauthorized,
	user.ErrNotSuperAdmin:          http.StatusForbidden,
	user.ErrBadAdminPassword:       http.StatusForbidden,
	user.ErrNotFound:               http.StatusNotFound,
	school.ErrSettingsNotFound:     http.StatusNotFound,
	student.ErrNotFound:            http.StatusNotFound,
	student.ErrAdmissionNotFound:   http.StatusNotFound,
	fee.ErrNotFound:                http.StatusNotFound,
	expense.ErrNotFound:            http.StatusNotFound,
	user.ErrEmailExists:            http.StatusConflict,
	student.ErrEmailExists:         http.StatusConflict,
	student.ErrAdmissionExists:     http.StatusConflict,
	fee.ErrDuplicateLedgerEntry:    http.StatusConflict,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = echo.Map{"error": "invalid input", "fields": fldErrs}
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = echo.Map{"error": "invalid input", "fields": fldErrs}
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if status, ok := domainStatus(origErr); ok {
				code = status
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			extra := map[string]interface{}{
				"requestId": ctx.Response().Header().Get(echo.HeaderXRequestID),
				"path":      ctx.Request().URL.Path,
			}
			if usr, cErr := getContextUser(ctx); cErr == nil {
				logger.Error(msg, errors.Wrap(err, msg), extra, usr)
			} else {
				logger.Error(msg, errors.Wrap(err, msg), extra)
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func domainStatus(err error) (int, bool) {
	if err == nil || !reflect.TypeOf(err).Comparable() {
		return 0, false
	}
	status, ok := errStatus[err]
	return status, ok
}
