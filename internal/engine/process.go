package engine

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/diogoX451/synthctl/internal/logging"
	"github.com/sourcegraph/conc"
)

// Config do processo do engine
type Config struct {
	Path     string
	Args     []string
	MaxFrame int
	// ExitTimeout é quanto esperar o engine sair depois do EOF no stdin
	ExitTimeout time.Duration
}

// Process é o engine rodando como processo filho
type Process struct {
	*Stream
	cmd     *exec.Cmd
	log     *logging.Logger
	exited  chan struct{}
	waitErr error
	wg      conc.WaitGroup
	timeout time.Duration
}

// Start sobe o processo e conecta os pipes
func Start(ctx context.Context, cfg Config, log *logging.Logger) (*Process, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("engine path is required")
	}
	if cfg.ExitTimeout <= 0 {
		cfg.ExitTimeout = 5 * time.Second
	}
	if log == nil {
		log = logging.Discard()
	}

	cmd := exec.CommandContext(ctx, cfg.Path, cfg.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine %s: %w", cfg.Path, err)
	}
	log.Infof("engine spawned path=%s pid=%d", cfg.Path, cmd.Process.Pid)

	p := &Process{
		Stream:  NewStream(stdout, stdin, cfg.MaxFrame, log),
		cmd:     cmd,
		log:     log,
		exited:  make(chan struct{}),
		timeout: cfg.ExitTimeout,
	}

	// stderr do engine vai para o log
	var stderrDone conc.WaitGroup
	stderrDone.Go(func() {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			log.Infof("engine: %s", sc.Text())
		}
	})

	p.wg.Go(func() {
		// stdout e stderr precisam ser drenados antes do Wait
		p.Stream.Wait()
		stderrDone.Wait()
		p.waitErr = cmd.Wait()
		close(p.exited)
	})

	return p, nil
}

// Close fecha o stdin e espera o engine sair; mata depois do timeout
func (p *Process) Close() error {
	closeErr := p.Stream.Close()

	select {
	case <-p.exited:
	case <-time.After(p.timeout):
		p.log.Errorf("engine did not exit after %s, killing pid=%d", p.timeout, p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		<-p.exited
	}
	p.wg.Wait()

	if p.waitErr != nil {
		return fmt.Errorf("engine exit: %w", p.waitErr)
	}
	return closeErr
}

// Pid do processo filho
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}
