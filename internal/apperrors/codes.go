package apperrors

import (
	"errors"
	"net/http"
)

// Wire codes of domain errors, shared by the HTTP server and the remote client
const (
	CodeProductNotFound   = "not_found"
	CodeAlreadyExists     = "already_exists"
	CodeImageUnavailable  = "image_unavailable"
	CodeInvalidQuantity   = "invalid_quantity"
	CodeOrderNotFound     = "order_not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeNothingToPack     = "nothing_to_pack"
	CodePersistence       = "persistence"
)

type codedError struct {
	err    error
	code   string
	status int
}

// Ordered: first match wins, so ErrPersistence wrapping other errors is checked last
var codes = []codedError{
	{ErrProductNotFound, CodeProductNotFound, http.StatusNotFound},
	{ErrProductAlreadyExists, CodeAlreadyExists, http.StatusConflict},
	{ErrImageUnavailable, CodeImageUnavailable, http.StatusNotFound},
	{ErrInvalidQuantity, CodeInvalidQuantity, http.StatusUnprocessableEntity},
	{ErrOrderNotFound, CodeOrderNotFound, http.StatusNotFound},
	{ErrOrderInvalidTransition, CodeInvalidTransition, http.StatusConflict},
	{ErrNothingToPack, CodeNothingToPack, http.StatusConflict},
	{ErrPersistence, CodePersistence, http.StatusInternalServerError},
}

// Code returns wire code and HTTP status of the domain error
// ok is false if err is not a domain error
func Code(err error) (code string, status int, ok bool) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, c.status, true
		}
	}
	return "", 0, false
}

// FromCode returns domain error by its wire code, nil if code is unknown
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
