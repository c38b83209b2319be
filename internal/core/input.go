package core

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrInputTooLarge is returned when a source exceeds the size limit.
var ErrInputTooLarge = errors.New("input too large")

// Input names used by MissingInputError.
const (
	InputMaster = "master"
	InputWork   = "work"
)

// MissingInputError reports a required input that was not supplied. It is
// raised by Service before any parsing happens.
type MissingInputError struct {
	Input string
}

func (e *MissingInputError) Error() string {
	if e.Input == InputWork {
		return "missing input: a work file or CPF list is required"
	}
	return "missing input: a master file is required"
}

// Source is a named input stream.
type Source struct {
	Name   string
	Reader io.Reader
}

func (s *Source) present() bool {
	return s != nil && s.Reader != nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ReadAllLimited reads r until EOF, failing with ErrInputTooLarge past max
// bytes (max <= 0 disables the limit) and with ctx.Err() once ctx is done.
func ReadAllLimited(ctx context.Context, r io.Reader, max int64) ([]byte, error) {
	src := io.Reader(&contextReader{ctx: ctx, r: r})
	if max > 0 {
		src = io.LimitReader(src, max+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if max > 0 && int64(len(data)) > max {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, max)
	}
	return data, nil
}
