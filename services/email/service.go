package emailsvc

import "github.com/trezcool/ada/core"

// NewService returns the email backend configured in conf.Email.Backend: console, sendgrid or smtp.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	switch conf.Email.Backend {
	case "sendgrid":
		return NewSendgridService(logger)
	case "smtp":
		return NewSMTPService(conf.Email, logger)
	}
	if conf.TestMode {
		return NewConsoleServiceMock()
	}
	return NewConsoleService(logger)
}
