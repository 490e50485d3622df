package domain

import "fmt"

type DomainError struct {
	Code     string
	Message  string
	ChangeID ChangeID
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Это позволяет использовать errors.Is()
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

const (
	CodeRepositoryUnavailable   = "REPOSITORY_UNAVAILABLE"
	CodeRequiredChangeInvisible = "REQUIRED_CHANGE_INVISIBLE"
	CodeChangeClosed            = "CHANGE_CLOSED"
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeForbidden               = "FORBIDDEN"
)

var (
	// ErrRepositoryUnavailable - хранилище недоступно, вычисление прерывается целиком
	ErrRepositoryUnavailable = &DomainError{
		Code:    CodeRepositoryUnavailable,
		Message: "repository unavailable",
	}

	// ErrRequiredChangeInvisible - обязательное изменение не видно пользователю
	ErrRequiredChangeInvisible = &DomainError{
		Code:    CodeRequiredChangeInvisible,
		Message: "required change is not visible",
	}

	// ErrChangeClosed - изменение уже смержено или заброшено
	ErrChangeClosed = &DomainError{
		Code:    CodeChangeClosed,
		Message: "change is closed",
	}

	// ErrNotFound - ресурс не найден
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "resource not found",
	}

	// ErrForbidden - у пользователя нет прав на операцию
	ErrForbidden = &DomainError{
		Code:    CodeForbidden,
		Message: "forbidden",
	}

	// ErrInvalidInput - некорректные входные данные
	ErrInvalidInput = &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
)

// NewNotFoundError создает ошибку NOT_FOUND с дополнительным контекстом
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewRepositoryUnavailableError(id ChangeID, project string, err error) *DomainError {
	return &DomainError{
		Code:     CodeRepositoryUnavailable,
		Message:  fmt.Sprintf("repository %q unavailable while resolving change %d", project, id),
		ChangeID: id,
		Err:      err,
	}
}

// NewTopicUnavailableError - не удалось прочитать изменения топика
func NewTopicUnavailableError(id ChangeID, topic string, err error) *DomainError {
	return &DomainError{
		Code:     CodeRepositoryUnavailable,
		Message:  fmt.Sprintf("topic %q unavailable while resolving change %d", topic, id),
		ChangeID: id,
		Err:      err,
	}
}

func NewRequiredChangeInvisibleError(id ChangeID) *DomainError {
	return &DomainError{
		Code:     CodeRequiredChangeInvisible,
		Message:  fmt.Sprintf("change %d is required for submission but not visible", id),
		ChangeID: id,
	}
}

// NewHiddenChangesError - в наборе есть изменения, скрытые от пользователя
func NewHiddenChangesError(id ChangeID) *DomainError {
	return &DomainError{
		Code:     CodeRequiredChangeInvisible,
		Message:  fmt.Sprintf("a change to be submitted with %d is not visible", id),
		ChangeID: id,
	}
}

func NewChangeClosedError(id ChangeID, status Status) *DomainError {
	return &DomainError{
		Code:     CodeChangeClosed,
		Message:  fmt.Sprintf("change %d is %s", id, status),
		ChangeID: id,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidInput,
		Message: message,
	}
}
