package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type AccountMode string

const (
	AccountModeOffline   AccountMode = "offline"
	AccountModeMicrosoft AccountMode = "microsoft"
)

const (
	MinMemoryGiB        = 2
	DefaultMemoryMinGiB = 2
)

type LaunchOptions struct {
	Mode            AccountMode `validate:"required,oneof=offline microsoft"`
	OfflineUsername string
	VersionID       string `validate:"required,offered"`
	MemoryMaxGiB    int    `validate:"gte=2"`
	MemoryMinGiB    int    `validate:"gte=1,ltefield=MemoryMaxGiB"`
}

// LaunchContext is what validation needs to know about the session that
// the options are submitted to.
type LaunchContext struct {
	OfferedVersions []string
	HasCredential   bool
}

// WithDefaults fills the fixed policy values left unset by the caller.
func (o LaunchOptions) WithDefaults() LaunchOptions {
	if o.MemoryMinGiB == 0 {
		o.MemoryMinGiB = DefaultMemoryMinGiB
	}
	o.OfflineUsername = strings.TrimSpace(o.OfflineUsername)
	o.VersionID = strings.TrimSpace(o.VersionID)
	return o
}

// Authorization derives the engine authorization for the options. The
// credential is only consulted in microsoft mode.
func (o LaunchOptions) Authorization(credential *Credential) (Authorization, error) {
	switch o.Mode {
	case AccountModeOffline:
		return OfflineAuthorization(o.OfflineUsername), nil
	case AccountModeMicrosoft:
		if credential == nil {
			return Authorization{}, fmt.Errorf("%w: microsoft mode requires a signed-in account", ErrInvalidOptions)
		}
		return AccountAuthorization(*credential), nil
	default:
		return Authorization{}, fmt.Errorf("%w: unsupported mode %q", ErrInvalidOptions, o.Mode)
	}
}

// Validate checks the options against lc. Failures wrap ErrInvalidOptions.
func (o LaunchOptions) Validate(ctx context.Context, lc LaunchContext) error {
	err := launchValidator.StructCtx(context.WithValue(ctx, launchContextKey{}, lc), o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, describeLaunchField(fieldErr))
	}

	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(messages, "; "))
}

type launchContextKey struct{}

var launchValidator = newLaunchValidator()

func newLaunchValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidationCtx("offered", validateOfferedVersion)
	v.RegisterStructValidationCtx(validateLaunchAccount, LaunchOptions{})
	return v
}

func launchContextFrom(ctx context.Context) LaunchContext {
	lc, _ := ctx.Value(launchContextKey{}).(LaunchContext)
	return lc
}

func validateOfferedVersion(ctx context.Context, fl validator.FieldLevel) bool {
	id := fl.Field().String()
	for _, offered := range launchContextFrom(ctx).OfferedVersions {
		if offered == id {
			return true
		}
	}
	return false
}

func validateLaunchAccount(ctx context.Context, sl validator.StructLevel) {
	o, ok := sl.Current().Interface().(LaunchOptions)
	if !ok {
		return
	}

	switch o.Mode {
	case AccountModeOffline:
		if strings.TrimSpace(o.OfflineUsername) == "" {
			sl.ReportError(o.OfflineUsername, "OfflineUsername", "OfflineUsername", "username", "")
		}
	case AccountModeMicrosoft:
		if !launchContextFrom(ctx).HasCredential {
			sl.ReportError(o.Mode, "Mode", "Mode", "credential", "")
		}
	}
}

func describeLaunchField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "username":
		return "offline mode requires a username"
	case "credential":
		return "microsoft mode requires a signed-in account"
	case "offered":
		return fmt.Sprintf("version %q was not offered", fe.Value())
	case "oneof":
		return fmt.Sprintf("mode %q is not supported", fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fieldLabel(fe.Field()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s GiB", fieldLabel(fe.Field()), fe.Param())
	case "ltefield":
		return "minimum memory must not exceed maximum memory"
	default:
		return fmt.Sprintf("%s failed %s", fieldLabel(fe.Field()), fe.Tag())
	}
}

func fieldLabel(field string) string {
	switch field {
	case "Mode":
		return "mode"
	case "VersionID":
		return "version"
	case "MemoryMaxGiB":
		return "maximum memory"
	case "MemoryMinGiB":
		return "minimum memory"
	default:
		return strings.ToLower(field)
	}
}
