package domain

// Handler recebe a resposta de sucesso de um request.
// Um erro devolvido aqui é fatal para a sessão.
type Handler func(resp Value) error

// Command é um request ainda não enviado: argumentos + handler de sucesso
type Command struct {
	Args      []string
	OnSuccess Handler
}

// Verb devolve o primeiro argumento (ou "")
func (c Command) Verb() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Noop é o handler das requests vazias
func Noop(Value) error { return nil }

// Sender registra o handler no correlator e envia o frame.
// A ordem importa: registrar antes de escrever.
type Sender interface {
	Send(args []string, onSuccess Handler) error
}

// SenderFunc adapta uma função a Sender
type SenderFunc func(args []string, onSuccess Handler) error

func (f SenderFunc) Send(args []string, onSuccess Handler) error { return f(args, onSuccess) }

// Reporter escreve mensagens para o usuário (erros do engine, rejeições locais)
type Reporter interface {
	Report(msg string)
}

// ReporterFunc adapta uma função a Reporter
type ReporterFunc func(msg string)

func (f ReporterFunc) Report(msg string) { f(msg) }
