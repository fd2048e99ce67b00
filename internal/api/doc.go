// Package api handles incoming HTTP requests, request validation and
// response formatting. It accepts multipart file uploads, hands them to the
// batch runner and reports one result per uploaded file.
package api
