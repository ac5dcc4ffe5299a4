package settings

import "errors"

var (
	ErrEmptyRule     = errors.New("rule value must not be empty")
	ErrDuplicateRule = errors.New("rule already exists")
	ErrRuleNotFound  = errors.New("rule not found")
	ErrUnknownKey    = errors.New("unknown settings key")
)
