package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
)

const (
	usernameMinLen    = 3
	usernameMaxLen    = 50
	passwordMinLen    = 8
	passwordMaxBytes  = 72
	emailMaxLen       = 255
	passwordSpecials  = "@$!%*?&"
	msgPasswordPolicy = "Password must contain at least one uppercase letter, one lowercase letter, one number and one special character"
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)

func ValidateRegister(req usermodel.RegisterRequest) error {
	fields := apperr.FieldErrors{}

	switch n := utf8.RuneCountInString(req.Username); {
	case n < usernameMinLen:
		fields.Add("username", "Username must be at least 3 characters long")
	case n > usernameMaxLen:
		fields.Add("username", "Username cannot exceed 50 characters")
	}

	for _, msg := range passwordProblems(req.Password) {
		fields.Add("password", msg)
	}

	if !emailRegex.MatchString(req.Email) {
		fields.Add("email", "Email format is invalid")
	}
	if utf8.RuneCountInString(req.Email) > emailMaxLen {
		fields.Add("email", "Email cannot exceed 255 characters")
	}

	if !fields.Empty() {
		return apperr.Validation(fields)
	}
	return nil
}

func ValidateLogin(req usermodel.LoginRequest) error {
	fields := apperr.FieldErrors{}
	if req.Username == "" {
		fields.Add("username", "Username is required")
	}
	if req.Password == "" {
		fields.Add("password", "Password is required")
	}

	if !fields.Empty() {
		return apperr.Validation(fields)
	}
	return nil
}

func passwordProblems(password string) []string {
	var problems []string

	if utf8.RuneCountInString(password) < passwordMinLen {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if len(password) > passwordMaxBytes {
		problems = append(problems, "Password cannot exceed 72 bytes")
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	first, _ := utf8.DecodeRuneInString(password)
	if !lower || !upper || !digit || !special || !isPasswordRune(first) {
		problems = append(problems, msgPasswordPolicy)
	}

	return problems
}

// isPasswordRune reports whether r is an ASCII letter, digit or allowed special.
func isPasswordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		strings.ContainsRune(passwordSpecials, r)
}
