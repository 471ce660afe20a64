package apperrors

import (
	"errors"
	"fmt"
)

// Kind — класс ошибки, определяет реакцию вызывающей стороны.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindExhausted  Kind = "exhausted"
	KindInternal   Kind = "internal"
)

// AppError — ошибка с кодом и текстом для пользователя.
// errors.Is сравнивает ошибки по Code, поэтому уточнённые копии совпадают с исходным значением.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail возвращает копию ошибки с уточнённым текстом.
func (e *AppError) WithDetail(format string, args ...any) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf("%s (%s)", e.Message, fmt.Sprintf(format, args...))
	return &cp
}

// Wrap возвращает копию ошибки с причиной.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf возвращает класс ошибки; для сторонних ошибок KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Internal оборачивает неожиданную ошибку хранилища или транспорта.
func Internal(err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// UserMessage — текст ошибки для чата. Детали сторонних ошибок пользователю не показываются.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "внутренняя ошибка"
}
