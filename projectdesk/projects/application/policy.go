package application

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

var ErrMissingArgument = errors.New("missing required argument")

// EnumPolicy decides what happens to a filter condition whose enum value
// is not a member of the enum.
type EnumPolicy int

const (
	// IgnoreInvalidEnum drops the condition and logs a warning.
	IgnoreInvalidEnum EnumPolicy = iota
	// RejectInvalidEnum fails the whole request with ErrInvalidEnumValue.
	RejectInvalidEnum
)

func (p EnumPolicy) String() string {
	if p == RejectInvalidEnum {
		return "reject"
	}
	return "ignore"
}

func ParseEnumPolicy(name string) (EnumPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ignore":
		return IgnoreInvalidEnum, nil
	case "reject":
		return RejectInvalidEnum, nil
	}
	return IgnoreInvalidEnum, errors.Errorf("unknown enum policy \"%s\"", name)
}

// resolve applies the policy to a parse failure. ok is false when the
// condition must be dropped.
func (p EnumPolicy) resolve(logger *slog.Logger, field, value string, err error) (ok bool, _ error) {
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, s.ErrInvalidEnumValue) || p == RejectInvalidEnum {
		return false, err
	}
	logger.Warn("invalid enum value ignored", "field", field, "value", value)
	return false, nil
}

// taskStatus parses an optional status filter. A blank name is unset.
func (p EnumPolicy) taskStatus(logger *slog.Logger, name string) (domain.TaskStatus, bool, error) {
	if strings.TrimSpace(name) == "" {
		return "", false, nil
	}
	status, err := domain.ParseTaskStatus(name)
	ok, err := p.resolve(logger, "status", name, err)
	return status, ok, err
}
