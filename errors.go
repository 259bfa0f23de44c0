package goConvert

import "errors"

var (
	// ErrBuilderUsed is returned by a second call to Builder.Build.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrRedisRequired is returned when the redis storage backend is selected
	// without a redis client.
	ErrRedisRequired = errors.New("redis storage backend requires a redis client")
	// ErrStorageUnavailable wraps failures opening the durable token store.
	ErrStorageUnavailable = errors.New("token storage unavailable")
	// ErrClientClosed is returned by Client operations after Close.
	ErrClientClosed = errors.New("client closed")
)
