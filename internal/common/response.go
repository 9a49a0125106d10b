package common

import (
	"github.com/labstack/echo/v4"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
}

// Envelope is the uniform response body: exactly one of Data and Error is set.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// SendData writes a successful envelope.
func SendData(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Data: data})
}

// SendError writes a failed envelope with the status derived from the error kind.
func SendError(c echo.Context, err error) error {
	kind := KindOf(err)
	return c.JSON(kind.HTTPStatus(), Envelope{
		Error: &ErrorBody{Code: kind, Message: PublicMessage(err)},
	})
}
