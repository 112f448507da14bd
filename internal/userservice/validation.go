package userservice

import (
	"regexp"

	"github.com/sushihentaime/blogstack/internal/common"
)

var (
	EmailRX     = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	UppercaseRX = regexp.MustCompile("[A-Z]")
	LowercaseRX = regexp.MustCompile("[a-z]")
	NumberRX    = regexp.MustCompile("[0-9]")
)

const (
	msgFullnameTooShort = "Fullname must be at least 3 characters long"
	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Invalid email"
	msgPasswordWeak     = "Password must contain at least one uppercase letter, one lowercase letter and one number and 6-20 characters"
)

// validateSignup stops at the first failing rule, in the order the form presents them.
func validateSignup(v *common.Validator, fullname, email, password string) {
	v.CheckFirst(v.CheckStringLength(fullname, 3, 1<<16), "fullname", msgFullnameTooShort)
	v.CheckFirst(email != "", "email", msgEmailRequired)
	v.CheckFirst(EmailRX.MatchString(email), "email", msgEmailInvalid)
	v.CheckFirst(validPassword(v, password), "password", msgPasswordWeak)
}

func validPassword(v *common.Validator, password string) bool {
	return v.CheckStringLength(password, 6, 20) &&
		UppercaseRX.MatchString(password) &&
		LowercaseRX.MatchString(password) &&
		NumberRX.MatchString(password)
}
