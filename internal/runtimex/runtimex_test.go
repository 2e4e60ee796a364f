package runtimex

import (
	"errors"
	"testing"
)

func TestPanicOnError(t *testing.T) {
	badfunc := func(in error) (out error) {
		defer func() {
			out = recover().(error)
		}()
		PanicOnError(in, "we expect this assertion to fail")
		return
	}

	t.Run("error is nil", func(t *testing.T) {
		PanicOnError(nil, "this assertion should not fail")
	})

	t.Run("error is not nil", func(t *testing.T) {
		expected := errors.New("mocked error")
		if !errors.Is(badfunc(expected), expected) {
			t.Fatal("not the error we expected")
		}
	})
}

func TestPanicIfFalse(t *testing.T) {
	badfunc := func(in bool, message string) (out string) {
		defer func() {
			out = recover().(string)
		}()
		PanicIfFalse(in, message)
		return
	}

	t.Run("assertion is true", func(t *testing.T) {
		PanicIfFalse(true, "this assertion should not fail")
	})

	t.Run("assertion is false", func(t *testing.T) {
		message := "mocked error"
		if badfunc(false, message) != message {
			t.Fatal("not the error we expected")
		}
	})
}

func TestTry(t *testing.T) {
	t.Run("Try1 on success", func(t *testing.T) {
		if Try1(17, nil) != 17 {
			t.Fatal("unexpected value")
		}
	})

	t.Run("Try2 on success", func(t *testing.T) {
		v1, v2 := Try2("a", 2, nil)
		if v1 != "a" || v2 != 2 {
			t.Fatal("unexpected values")
		}
	})

	t.Run("Try0 on failure", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()
		Try0(errors.New("mocked error"))
	})
}
