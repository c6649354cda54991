package feeders

import (
	"errors"
)

// General feeder errors
var (
	ErrUnsupportedFileType = errors.New("unsupported config file type")
	ErrFileRead            = errors.New("failed to read config file")
)

// Environment feeder errors
var (
	ErrEnvInvalidStructure     = errors.New("env: invalid structure")
	ErrEnvEmptyPrefixAndSuffix = errors.New("env: prefix or suffix cannot be empty")
	ErrEnvFieldCannotBeSet     = errors.New("env: field cannot be set")
)

// HCL feeder errors
var (
	ErrHCLParse            = errors.New("hcl: parse error")
	ErrHCLUnsupportedBody  = errors.New("hcl: unsupported body type")
	ErrHCLEvaluate         = errors.New("hcl: cannot evaluate expression")
	ErrHCLUnsupportedValue = errors.New("hcl: unsupported value type")
	ErrHCLDuplicateKey     = errors.New("hcl: duplicate top-level key")
)
