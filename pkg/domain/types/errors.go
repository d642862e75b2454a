package types

import "github.com/m-mizutani/goerr/v2"

// Tags classify hub failures. Retrying does not depend on them; they only enrich logs.
var (
	ErrTagNotFound     = goerr.NewTag("not_found")
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
	ErrTagServerError  = goerr.NewTag("server_error")
	ErrTagNetwork      = goerr.NewTag("network")
)

var (
	ErrInvalidFilename = goerr.New("filename escapes the local directory")
)

// IsPermanent reports whether err is tagged as a failure that retrying cannot fix
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return goerr.HasTag(err, ErrTagNotFound) || goerr.HasTag(err, ErrTagUnauthorized)
}
