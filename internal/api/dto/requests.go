package dto

// CommandRequest é uma linha de comando como seria digitada no terminal
type CommandRequest struct {
	Line string `json:"line"`
}
