package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	resultSuccess = "SUCCESS"
	resultError   = "ERROR"
)

// envelope wraps every response body.
type envelope struct {
	ResultCode string      `json:"resultCode"`
	Result     interface{} `json:"result"`
}

func ok(ctx echo.Context, code int, result interface{}) error {
	return ctx.JSON(code, envelope{ResultCode: resultSuccess, Result: result})
}

type messageResult struct {
	Message string `json:"message"`
}

// pathID reads a positive int64 path parameter.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func academyID(ctx echo.Context) (int64, error) {
	return pathID(ctx, "academyId")
}

// academyAndID reads both the academy and the resource id.
func academyAndID(ctx echo.Context) (int64, int64, error) {
	aid, err := academyID(ctx)
	if err != nil {
		return 0, 0, err
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	return aid, id, nil
}

func bind(ctx echo.Context, dest interface{}) error {
	if err := ctx.Bind(dest); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok {
			return herr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
