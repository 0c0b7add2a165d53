// Package httpclient turns a request.Config into HTTP calls and folds every call into
// a metrics.TestResult.
//
// # Request Building
//
// [NewRequestBuilder] accepts only the (method, content type) pairs the tool can
// dispatch:
//
//	GET  + application/json or no content type   query string from the extra params
//	POST + application/json                       flat JSON object body
//	POST + application/x-www-form-urlencoded      flat JSON object body, or a real
//	                                              form body with BodyURLEncoded
//
// Query strings are appended verbatim, without URL encoding, for compatibility with
// existing profiles. Any other pair yields a *Failure of category CategoryUnsupported.
//
// # Execution
//
// [Executor.Execute] never returns an error. Unsupported pairs, body encoding problems,
// transport errors, body read errors and non JSON bodies all become a synthetic result
// with status 400 and a single "error" entry:
//
//	exec := httpclient.NewExecutor(httpclient.NewClient(30*time.Second, false))
//	result := exec.Execute(ctx, cfg)
//
// The recorded operate time spans request construction, the call itself and the
// decoding of the response body.
package httpclient
