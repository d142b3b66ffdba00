// Package httpkit is the slice of the platform http packages that modules route with
package httpkit

import (
	"net/http"

	phttp "rategrid/internal/platform/net/http"
)

type (
	// Envelope is the json body every endpoint answers with
	Envelope = phttp.Envelope

	// Response lets a handler pick its own status
	Response = phttp.Response

	Handler = phttp.Handler
	Router  = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// JSON binds the body into T before calling fn
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler { return phttp.JSONHandler(fn) }
