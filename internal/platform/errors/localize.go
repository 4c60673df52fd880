package errors

import (
	stderrors "errors"

	"github.com/louisbranch/camptrack/internal/platform/errors/i18n"
)

// LocalizedMessage renders err for people using the locale catalog. Errors
// without a catalog entry fall back to their own text.
func LocalizedMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	code := string(appErr.Code)
	msg := i18n.GetCatalog(locale).Format(code, appErr.Metadata)
	if msg == code {
		return appErr.Error()
	}
	return msg
}
