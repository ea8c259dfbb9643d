package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"msgboard/internal/common"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

type fieldErrors []common.FieldError

func (f *fieldErrors) add(field, msg string) {
	*f = append(*f, common.FieldError{Field: field, Message: msg})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return common.NewValidationError(f)
}

// validEmail accepts a bare addr-spec whose domain has at least one dot.
func validEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
