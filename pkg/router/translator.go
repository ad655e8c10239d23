package router

import (
	"mercator-hq/lantern/pkg/httperr"
	"mercator-hq/lantern/pkg/wire"
)

// FailureTranslator turns a handler error into a response.
type FailureTranslator func(err error, ctx *wire.Context)

// DefaultFailureTranslator answers every error with status 500 and the error
// message as a plain text body.
func DefaultFailureTranslator(err error, ctx *wire.Context) {
	ctx.Status(wire.StatusInternalServerError).Send(err.Error())
}

// StatusTranslator answers with the status of the error's httperr kind
// (400, 401, 403, 404) and the error message. Errors without a kind get 500.
//
//	endpoint.SetFailureTranslator(router.StatusTranslator)
func StatusTranslator(err error, ctx *wire.Context) {
	ctx.Status(httperr.KindOf(err).Status()).Send(err.Error())
}
