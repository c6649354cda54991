package componentkit

import (
	"errors"
)

// Container errors
var (
	// Registry state errors
	ErrRegistryFrozen       = errors.New("service registry is frozen")
	ErrContainerCompiled    = errors.New("container is already compiled")
	ErrContainerNotCompiled = errors.New("container is not compiled")

	// Service registry errors
	ErrServiceNotFound       = errors.New("service not found")
	ErrDefinitionNil         = errors.New("service definition is nil")
	ErrDefinitionIDEmpty     = errors.New("service definition id is empty")
	ErrDefinitionFactoryNil  = errors.New("service definition has no factory")
	ErrServiceInstantiation  = errors.New("failed to instantiate service")
	ErrServiceWrongType      = errors.New("service doesn't satisfy required type")
	ErrCompilerPassFailed    = errors.New("compiler pass failed")
	ErrCircularServiceLookup = errors.New("circular service lookup detected")

	// Extension errors
	ErrExtensionNil               = errors.New("extension is nil")
	ErrExtensionNotFound          = errors.New("extension not registered")
	ErrExtensionAlreadyRegistered = errors.New("extension already registered")
	ErrExtensionLoadFailed        = errors.New("extension load failed")

	// Parameter errors
	ErrParameterNotFound = errors.New("parameter not found")
	ErrParameterType     = errors.New("parameter has unexpected type")

	// Configuration errors
	ErrInvalidConfiguration       = errors.New("invalid configuration")
	ErrConfigNil                  = errors.New("config is nil")
	ErrConfigNotPointer           = errors.New("config must be a pointer")
	ErrConfigNotStruct            = errors.New("config must be a struct")
	ErrConfigRequiredFieldMissing = errors.New("required field is missing")
	ErrDefaultValueParseError     = errors.New("failed to parse default value")

	// Deprecation errors
	ErrDeprecationVersionInvalid = errors.New("deprecation version is not a valid semantic version")

	// Observer errors
	ErrObserverNil = errors.New("observer is nil")
)
