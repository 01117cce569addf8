package domain

import (
	"errors"
	"fmt"
)

// ErrorClass classifica falhas do pipeline
type ErrorClass int

const (
	// ClassProtocol: frame inválido, resposta sem request, engine morto. Fatal.
	ClassProtocol ErrorClass = iota
	// ClassEngine: resposta com campo `error`. Reportado, pipeline segue.
	ClassEngine
	// ClassInvalid: validação local. Comando vira no-op.
	ClassInvalid
)

func (c ErrorClass) String() string {
	switch c {
	case ClassProtocol:
		return "protocol"
	case ClassEngine:
		return "engine"
	case ClassInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	// Protocolo
	ErrMalformedFrame      = errors.New("malformed frame")
	ErrMissingResponse     = errors.New("frame has no response object")
	ErrTruncatedFrame      = errors.New("stream ended inside a frame")
	ErrFrameTooLarge       = errors.New("frame exceeds maximum size")
	ErrUnsolicitedResponse = errors.New("response without pending request")
	ErrEngineExited        = errors.New("engine process exited")

	// Validação local
	ErrNameDefined           = errors.New("name already defined")
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")
	ErrInvalidDuration       = errors.New("invalid duration")

	// Engine
	ErrEngineReported = errors.New("engine reported error")
)

// ClassifiedError carrega a classe junto do erro
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Wrap segue o formato "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func WrapProtocol(err error, component, method, action string) error {
	return wrapClassified(ClassProtocol, err, component, method, action)
}

func WrapInvalid(err error, component, method, action string) error {
	return wrapClassified(ClassInvalid, err, component, method, action)
}

func wrapClassified(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Class:     class,
		Err:       Wrap(err, component, method, action),
		Component: component,
		Operation: method,
	}
}

// EngineError representa o campo `error` de uma resposta
func EngineError(msg string) error {
	return &ClassifiedError{Class: ClassEngine, Err: fmt.Errorf("%w: %s", ErrEngineReported, msg)}
}

// Classify devolve a classe do erro. Desconhecidos são tratados como fatais.
func Classify(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	switch {
	case errors.Is(err, ErrNameDefined),
		errors.Is(err, ErrUnsupportedSampleRate),
		errors.Is(err, ErrInvalidDuration):
		return ClassInvalid
	case errors.Is(err, ErrEngineReported):
		return ClassEngine
	default:
		return ClassProtocol
	}
}

func IsFatal(err error) bool {
	return err != nil && Classify(err) == ClassProtocol
}

func IsInvalid(err error) bool {
	return err != nil && Classify(err) == ClassInvalid
}
