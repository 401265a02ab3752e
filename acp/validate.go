package acp

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate runs struct-tag validation on decoded request params (spec.md
// §4.1: decode errors must name the offending field). One validator
// instance is reused across every call per the library's own guidance —
// it caches struct tag reflection internally.
var validate = validator.New()

// validateParams reports the first failing field as an invalid_params
// error, or nil if v has no "validate" tags or all of them pass.
func validateParams(v any) *RPCError {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return NewRPCError(CodeInvalidParams,
				"missing or invalid field \""+lowerFirst(fe.Field())+"\"", nil)
		}
		return NewRPCError(CodeInvalidParams, err.Error(), nil)
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
