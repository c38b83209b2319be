package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestReadAllLimited(t *testing.T) {
	ctx := context.Background()

	data, err := ReadAllLimited(ctx, strings.NewReader("12345"), 5)
	if err != nil {
		t.Fatalf("ReadAllLimited() error = %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("ReadAllLimited() = %q", data)
	}

	_, err = ReadAllLimited(ctx, strings.NewReader("123456"), 5)
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}

	data, err = ReadAllLimited(ctx, strings.NewReader(strings.Repeat("x", 1000)), 0)
	if err != nil || len(data) != 1000 {
		t.Errorf("unlimited read = %d bytes, err %v", len(data), err)
	}
}

func TestReadAllLimited_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAllLimited(ctx, strings.NewReader("data"), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMissingInputError(t *testing.T) {
	master := &MissingInputError{Input: InputMaster}
	work := &MissingInputError{Input: InputWork}

	if !strings.Contains(master.Error(), "master file") {
		t.Errorf("master message = %q", master.Error())
	}
	if !strings.Contains(work.Error(), "CPF list") {
		t.Errorf("work message = %q", work.Error())
	}
}
