// Package middleware contains HTTP middleware for the Fiber application.
//
//   - auth: API key validation protecting every route except the skipped ones.
//   - rayid: a request ID stored in the fiber locals and echoed in the
//     X-Ray-ID response header, used by logger.WithRayID.
//
// rayid must be registered first so every log line of a request is tagged.
package middleware
