package shared

import "errors"

var (
	ErrNoLogger            = errors.New("no logger provided")
	ErrNoConfig            = errors.New("no config provided")
	ErrNoEndpoint          = errors.New("no endpoint provided")
	ErrNoCredential        = errors.New("no API key or managed identity client id provided")
	ErrConnectionLimit     = errors.New("connection limit reached")
	ErrToolNotFound        = errors.New("tool not found")
	ErrRelayNotAttached    = errors.New("relay has no downstream transport attached")
	ErrRelayAlreadyStarted = errors.New("relay already started")
	ErrRelayClosed         = errors.New("relay closed")
	ErrQueueClosed         = errors.New("send queue closed")
)
