package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"github.com/recipe-book/recipe-book/internal/cache"
)

const (
	MsgAlreadyAuthorized = "You already authorized"

	MsgUsernameRequired = "Username field is required"
	MsgUsernameTooShort = "Username is too short (less than 4 characters)"
	MsgUsernameTooLong  = "Username is too long (more than 30 characters)"

	MsgEmailRequired = "Email field is required"
	MsgEmailInvalid  = "The email address is not valid"
	MsgEmailTLD      = "The part after the @-sign is not valid. It is not within a valid top-level domain"

	MsgPasswordsRequired = "Password fields is required"
	MsgPasswordRequired  = "Password field is required"
	MsgPasswordsMismatch = "Passwords don't match"
	MsgPasswordTooShort  = "Password is too short (less than 8 characters)"
	MsgPasswordTooLong   = "Password is too long (more than 30 characters)"
)

const (
	usernameMinLength = 4
	usernameMaxLength = 30
	passwordMinLength = 8
	passwordMaxLength = 30
)

// icannTLDs remembers which top-level domains the public suffix list
// marks as ICANN managed. The list is compiled in, so answers never change.
var icannTLDs = cache.MustMemo(512, isICANNTLD)

func isICANNTLD(tld string) bool {
	_, icann := publicsuffix.PublicSuffix(tld)
	return icann
}

// Registration is the sign-up form.
type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// ValidateRegistration accumulates one message per failing field group.
func ValidateRegistration(form Registration) []string {
	var errs []string
	errs = appendIf(errs, CheckUsername(form.Username))
	errs = appendIf(errs, CheckEmail(form.Email))
	errs = append(errs, CheckPasswords(form.Password, form.PasswordConfirm)...)
	return errs
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) []string {
	var errs []string
	errs = appendIf(errs, CheckEmail(email))
	if password == "" {
		return append(errs, MsgPasswordRequired)
	}
	return appendIf(errs, CheckPassword(password))
}

// CheckUsername returns the first username problem or "".
func CheckUsername(username string) string {
	n := utf8.RuneCountInString(username)
	switch {
	case username == "":
		return MsgUsernameRequired
	case n < usernameMinLength:
		return MsgUsernameTooShort
	case n > usernameMaxLength:
		return MsgUsernameTooLong
	}
	return ""
}

// CheckEmail validates address syntax and requires the top-level domain to
// be one managed by ICANN.
func CheckEmail(email string) string {
	if email == "" {
		return MsgEmailRequired
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return MsgEmailInvalid
	}

	at := strings.LastIndexByte(email, '@')
	local, domainPart := email[:at], strings.ToLower(email[at+1:])
	if local == "" || domainPart == "" {
		return MsgEmailInvalid
	}
	if !strings.Contains(domainPart, ".") || strings.HasPrefix(domainPart, ".") ||
		strings.HasSuffix(domainPart, ".") || strings.Contains(domainPart, "..") {
		return MsgEmailTLD
	}

	tld := domainPart[strings.LastIndexByte(domainPart, '.')+1:]
	if !icannTLDs.Check(tld) {
		return MsgEmailTLD
	}
	return ""
}

// CheckPasswords validates the password and its confirmation. A missing
// field skips the length rules.
func CheckPasswords(password, confirm string) []string {
	if password == "" || confirm == "" {
		return []string{MsgPasswordsRequired}
	}
	var errs []string
	if password != confirm {
		errs = append(errs, MsgPasswordsMismatch)
	}
	return appendIf(errs, CheckPassword(password))
}

// CheckPassword applies the length rules.
func CheckPassword(password string) string {
	n := utf8.RuneCountInString(password)
	switch {
	case n < passwordMinLength:
		return MsgPasswordTooShort
	case n > passwordMaxLength:
		return MsgPasswordTooLong
	}
	return ""
}

func appendIf(errs []string, msg string) []string {
	if msg == "" {
		return errs
	}
	return append(errs, msg)
}
