// Package wire implements the HTTP/1.1 wire codec used by the lantern server.
//
// # Overview
//
// The codec is deliberately small and hand-rolled. It covers exactly one
// request/response exchange per connection:
//
//   - ReadRequest drains the bytes a peer has sent and parses them into a
//     Request (method, path, query and form parameters, headers, body,
//     client IP).
//   - Response serializes a status line, headers and a body (optionally gzip
//     compressed) back onto the connection and closes it.
//   - Context bundles a Request and a Response for handlers and offers a
//     fluent builder API.
//
// # Request Parsing
//
// Line endings are normalized by stripping carriage returns. The first line
// is the request line; header lines follow until the first blank line and
// everything after it is the body. Malformed input is never rejected: missing
// fields stay empty and the router falls back to 404.
//
//	req, err := wire.ReadRequest(conn, conn.RemoteAddr(), wire.DefaultMaxRequestBytes)
//	if err != nil {
//	    return err
//	}
//	name := req.Params().First("name")
//
// # Response Serialization
//
// Responses are fully buffered before they are written:
//
//	HTTP/1.1 200\r\n
//	content-type: text/plain\r\n
//	connection: keep-alive\r\n
//	content-length: 5\r\n
//	\r\n
//	hello
//
// Header names are stored and emitted lower-cased, in insertion order.
//
// Two behaviors are kept on purpose for wire compatibility with existing
// clients: "Connection: keep-alive" is always announced although the
// connection is closed after the response, and the Content-Length of a
// string body counts UTF-16 code units rather than encoded bytes.
//
// # Thread Safety
//
// Request is immutable after parsing and safe for concurrent reads. Response
// and Context belong to a single connection goroutine and are not safe for
// concurrent use.
package wire
