package auth

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/ports"
	"github.com/rs/zerolog/log"
)

const (
	maxHelperLineBytes   = 1 << 20
	maxHelperStderrBytes = 4 << 10
	helperWaitDelay      = 2 * time.Second
)

var (
	ErrHelperNotConfigured = errors.New("auth helper is not configured")
	ErrNoCredential        = errors.New("auth helper produced no credential")
)

// Command is an external program and its arguments.
type Command struct {
	Path string
	Args []string
	Env  []string
}

// ParseCommand splits a configured command line on whitespace.
func ParseCommand(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Path: fields[0], Args: fields[1:]}
}

// HelperProvider signs in by running a helper program that speaks JSON
// lines on stdout. Cancelling the context kills the helper.
type HelperProvider struct {
	command Command
}

var _ ports.IdentityProvider = (*HelperProvider)(nil)

func NewHelperProvider(command Command) *HelperProvider {
	return &HelperProvider{command: command}
}

type helperMessage struct {
	Type        string          `json:"type"`
	Message     string          `json:"message"`
	AccountID   string          `json:"accountId"`
	DisplayName string          `json:"displayName"`
	Payload     json.RawMessage `json:"payload"`
}

func (p *HelperProvider) Authenticate(ctx context.Context) (domain.Credential, error) {
	if p.command.Path == "" {
		return domain.Credential{}, ErrHelperNotConfigured
	}

	cmd := exec.CommandContext(ctx, p.command.Path, p.command.Args...)
	cmd.Env = append(os.Environ(), p.command.Env...)
	cmd.WaitDelay = helperWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("open auth helper stdout: %w", err)
	}
	stderr := &limitedBuffer{limit: maxHelperStderrBytes}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return domain.Credential{}, fmt.Errorf("start auth helper: %w", err)
	}

	var (
		credential *domain.Credential
		helperErr  error
	)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHelperLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg helperMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Debug().Str("line", string(line)).Msg("auth helper output")
			continue
		}

		switch msg.Type {
		case "prompt":
			log.Info().Str("message", msg.Message).Msg("sign-in prompt")
		case "credential":
			if strings.TrimSpace(msg.AccountID) == "" {
				helperErr = errors.New("auth helper credential is missing an account id")
				continue
			}
			credential = &domain.Credential{
				AccountID:   msg.AccountID,
				DisplayName: msg.DisplayName,
				Raw:         append(json.RawMessage(nil), msg.Payload...),
			}
		case "error":
			helperErr = fmt.Errorf("auth helper: %s", msg.Message)
		default:
			log.Debug().Str("type", msg.Type).Msg("auth helper message ignored")
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Credential{}, fmt.Errorf("auth helper cancelled: %w", ctxErr)
	}
	if helperErr != nil {
		return domain.Credential{}, helperErr
	}
	if waitErr != nil {
		return domain.Credential{}, formatHelperExit(waitErr, stderr.String())
	}
	if scanErr != nil {
		return domain.Credential{}, fmt.Errorf("read auth helper output: %w", scanErr)
	}
	if credential == nil {
		return domain.Credential{}, ErrNoCredential
	}

	return *credential, nil
}

func formatHelperExit(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("auth helper exited: %w", err)
	}
	return fmt.Errorf("auth helper exited: %w: %s", err, stderr)
}

// limitedBuffer keeps the first limit bytes written to it.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
