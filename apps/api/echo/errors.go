package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternal       = "INTERNAL_SERVER_ERROR"
)

var errInvalidID = core.NewValidationError(errors.New("invalid id in path"))

type errorResult struct {
	ErrorCode string            `json:"errorCode"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeInvalidRequest
	case http.StatusUnauthorized:
		return core.ErrInvalidToken.Code
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	default:
		return "HTTP_ERROR"
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var result errorResult

		switch origErr := errors.Cause(err).(type) {
		case *core.Error:
			code = origErr.Kind.HTTPStatus()
			result = errorResult{ErrorCode: origErr.Code, Message: origErr.Message}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			result = errorResult{ErrorCode: codeInvalidRequest, Message: "invalid request", Fields: fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			result = errorResult{ErrorCode: codeInvalidRequest, Message: origErr.Error()}
			if origErr.Fields != nil {
				result.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					result.Fields[fErr.Field] = fErr.Error
				}
			}
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			result = errorResult{ErrorCode: httpErrorCode(code), Message: fmt.Sprint(origErr.Message)}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			result = errorResult{ErrorCode: codeInternal, Message: msg}

			logger.Error(fmt.Sprintf("%s %s: %v", ctx.Request().Method, ctx.Path(), err), errors.Wrap(err, msg), actorFrom(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				result.Message = err.Error()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, envelope{ResultCode: resultError, Result: result})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
