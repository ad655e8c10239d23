// Package httperr defines the error kinds handler authors use to signal
// intent: BadRequest, Forbidden, NotAuthorized, NotFound and
// InternalServerError.
//
// The dispatcher treats every handler error the same way. Mapping a kind to a
// status code is the job of a failure translator, for example
// router.StatusTranslator:
//
//	func(ctx *wire.Context) error {
//	    if ctx.Param("id") == nil {
//	        return httperr.BadRequest("missing id")
//	    }
//	    ...
//	}
//
// Kinds compare with errors.Is:
//
//	if errors.Is(err, httperr.KindNotFound) { ... }
package httperr
