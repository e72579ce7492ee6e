// Package httpapi exposes the registry over HTTP with a chi router.
//
// Creation requires a bearer token; reads are public. Error kinds map to
// status codes: authentication 401, validation 400, unknown id 404,
// duplicate or write conflict 409, counter overflow 507, anything else 500.
package httpapi
