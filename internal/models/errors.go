package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRedirectTimeout = errors.New("no authorization redirect received")
	ErrTokenExchange   = errors.New("token exchange rejected")
	ErrFetchFailed     = errors.New("list fetch failed")
	ErrAuthExpired     = errors.New("authorization expired")
	ErrUnmappedStatus  = errors.New("unmapped status")
	ErrMutation        = errors.New("mutation rejected")
)

// RedirectTimeoutError is returned when the listener gives up waiting for the redirect.
type RedirectTimeoutError struct {
	Service ServiceName
	After   time.Duration
}

func (e *RedirectTimeoutError) Error() string {
	return fmt.Sprintf("%s: no redirect received after %s", e.Service.Display(), e.After)
}

func (e *RedirectTimeoutError) Is(target error) bool { return target == ErrRedirectTimeout }

// TokenExchangeError carries the upstream payload of a rejected code exchange or refresh.
type TokenExchangeError struct {
	Service    ServiceName
	StatusCode int
	Payload    string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed (%d): %s", e.Service.Display(), e.StatusCode, e.Payload)
}

func (e *TokenExchangeError) Is(target error) bool { return target == ErrTokenExchange }

// FetchFailedError aborts a fetch. No partial model accompanies it.
type FetchFailedError struct {
	Service ServiceName
	Cause   error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetching %s list: %v", e.Service.Display(), e.Cause)
}

func (e *FetchFailedError) Is(target error) bool { return target == ErrFetchFailed }
func (e *FetchFailedError) Unwrap() error        { return e.Cause }

// AuthExpiredError means the service rejected the access token. The caller should re-authorize.
type AuthExpiredError struct {
	Service ServiceName
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%s session expired, re-authorization required", e.Service.Display())
}

func (e *AuthExpiredError) Is(target error) bool { return target == ErrAuthExpired }

// UnmappedStatusError means the vocabulary table has a hole. It is a programming error.
type UnmappedStatusError struct {
	Status Status
	Kind   MediaKind
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("no mapping for status %q (%s)", e.Status, e.Kind)
}

func (e *UnmappedStatusError) Is(target error) bool { return target == ErrUnmappedStatus }

// MutationError is the target service's structured error envelope for a rejected update.
type MutationError struct {
	Code    string
	Message string
}

func (e *MutationError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MutationError) Is(target error) bool { return target == ErrMutation }
