package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bnema/obsidian-launcher/internal/domain"
	"github.com/bnema/obsidian-launcher/internal/ports"
	"github.com/rs/zerolog/log"
)

const maxEngineLineBytes = 1 << 20

var ErrHelperNotConfigured = errors.New("launch engine helper is not configured")

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

type Config struct {
	Command Command
	// Root is the game directory handed to the helper.
	Root string
}

// ProcessEngine drives a launch helper program. The request is written to
// the helper's stdin as JSON and its stdout is read as JSON event lines.
// Only the most recent launch publishes events; a game started by an
// earlier launch keeps running but is no longer reported.
type ProcessEngine struct {
	cfg    Config
	broker *Broker

	generation atomic.Uint64
	wg         sync.WaitGroup
}

var _ ports.LaunchEngine = (*ProcessEngine)(nil)

func NewProcessEngine(cfg Config) *ProcessEngine {
	return &ProcessEngine{cfg: cfg, broker: NewBroker()}
}

// Subscribe supersedes any running game: from here on only events of the
// next launch are published.
func (e *ProcessEngine) Subscribe(buffer int) ports.EngineSubscription {
	sub := e.broker.Subscribe(buffer)
	e.generation.Add(1)
	return sub
}

// Launch starts the helper. ctx bounds the start only; the game outlives
// the request that launched it.
func (e *ProcessEngine) Launch(ctx context.Context, req ports.LaunchRequest) error {
	if e.cfg.Command.Path == "" {
		return ErrHelperNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(newLaunchPayload(e.cfg.Root, req))
	if err != nil {
		return fmt.Errorf("encode launch request: %w", err)
	}

	cmd := exec.Command(e.cfg.Command.Path, e.cfg.Command.Args...)
	cmd.Env = append(os.Environ(), e.cfg.Command.Env...)
	cmd.Stdin = bytes.NewReader(append(payload, '\n'))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open launch helper stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("open launch helper stderr: %w", err)
	}

	generation := e.generation.Add(1)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start launch helper: %w", err)
	}

	log.Info().Int("pid", cmd.Process.Pid).Uint64("generation", generation).Msg("launch helper started")

	e.wg.Add(1)
	go e.watch(generation, cmd, stdout, stderr)
	return nil
}

// Wait blocks until every helper started by this engine has exited.
func (e *ProcessEngine) Wait() {
	e.wg.Wait()
}

func (e *ProcessEngine) watch(generation uint64, cmd *exec.Cmd, stdout io.Reader, stderr io.Reader) {
	defer e.wg.Done()

	publish := func(event ports.EngineEvent) {
		if e.generation.Load() != generation {
			log.Debug().Str("kind", string(event.Kind)).Uint64("generation", generation).Msg("superseded launch event dropped")
			return
		}
		e.broker.Publish(event)
	}

	var stderrDone sync.WaitGroup
	stderrDone.Add(1)
	go func() {
		defer stderrDone.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxEngineLineBytes)
		for scanner.Scan() {
			publish(ports.EngineEvent{Kind: ports.EngineEventDebug, Text: scanner.Text()})
		}
	}()

	sawClose := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEngineLineBytes)
	for scanner.Scan() {
		event, ok := translateLine(scanner.Bytes())
		if !ok {
			continue
		}
		if event.Kind == ports.EngineEventExit {
			sawClose = true
		}
		publish(event)
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("read launch helper output")
	}
	stderrDone.Wait()

	err := cmd.Wait()
	code := exitCode(cmd, err)
	log.Info().Int("code", code).Uint64("generation", generation).Msg("launch helper exited")

	if !sawClose {
		publish(ports.EngineEvent{Kind: ports.EngineEventExit, ExitCode: code})
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

type launchPayload struct {
	Root          string               `json:"root"`
	Version       versionPayload       `json:"version"`
	Memory        memoryPayload        `json:"memory"`
	Authorization authorizationPayload `json:"authorization"`
}

type versionPayload struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type memoryPayload struct {
	Max string `json:"max"`
	Min string `json:"min"`
}

type authorizationPayload struct {
	Kind     string          `json:"kind"`
	Username string          `json:"username,omitempty"`
	Account  json.RawMessage `json:"account,omitempty"`
}

func newLaunchPayload(root string, req ports.LaunchRequest) launchPayload {
	versionType := req.VersionType
	if versionType == "" {
		versionType = domain.VersionTypeRelease
	}

	return launchPayload{
		Root: root,
		Version: versionPayload{
			Number: req.Options.VersionID,
			Type:   string(versionType),
		},
		Memory: memoryPayload{
			Max: gigabytes(req.Options.MemoryMaxGiB),
			Min: gigabytes(req.Options.MemoryMinGiB),
		},
		Authorization: authorizationPayload{
			Kind:     string(req.Authorization.Kind),
			Username: req.Authorization.Username,
			Account:  req.Authorization.Account,
		},
	}
}

func gigabytes(n int) string {
	return strconv.Itoa(n) + "G"
}

type helperLine struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type progressPayload struct {
	Type  string `json:"type"`
	Task  int64  `json:"task"`
	Total int64  `json:"total"`
}

// translateLine maps one stdout line to an engine event. Lines that are
// not JSON event objects are passed through as data.
func translateLine(raw []byte) (ports.EngineEvent, bool) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return ports.EngineEvent{}, false
	}

	var msg helperLine
	if line[0] != '{' || json.Unmarshal(line, &msg) != nil || msg.Event == "" {
		return ports.EngineEvent{Kind: ports.EngineEventData, Text: string(line)}, true
	}

	switch msg.Event {
	case "progress":
		var p progressPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Debug().Err(err).Str("line", string(line)).Msg("malformed progress event")
			return ports.EngineEvent{}, false
		}
		return ports.EngineEvent{
			Kind:     ports.EngineEventProgress,
			Progress: ports.EngineProgress{Completed: p.Task, Total: p.Total, Label: p.Type},
		}, true
	case "data":
		return ports.EngineEvent{Kind: ports.EngineEventData, Text: payloadText(msg.Payload)}, true
	case "debug":
		return ports.EngineEvent{Kind: ports.EngineEventDebug, Text: payloadText(msg.Payload)}, true
	case "ready":
		return ports.EngineEvent{Kind: ports.EngineEventReady}, true
	case "close":
		return ports.EngineEvent{Kind: ports.EngineEventExit, ExitCode: closeCode(msg.Payload)}, true
	case "error":
		text := errorText(msg.Payload)
		return ports.EngineEvent{Kind: ports.EngineEventError, Text: text, Err: errors.New(text)}, true
	default:
		log.Debug().Str("event", msg.Event).Msg("unknown launch helper event")
		return ports.EngineEvent{}, false
	}
}

// closeCode reads the exit code of a close event, sent either as a bare
// number or as {"code":N}. Anything else is reported as -1.
func closeCode(payload json.RawMessage) int {
	var code int
	if err := json.Unmarshal(payload, &code); err == nil {
		return code
	}
	var wrapped struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Code != nil {
		return *wrapped.Code
	}
	return -1
}

// errorText reads the message of an error event, sent either as a string or
// as {"message":"..."}.
func errorText(payload json.RawMessage) string {
	var wrapped struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Message != "" {
		return wrapped.Message
	}
	return payloadText(payload)
}

// payloadText returns a JSON string payload unquoted and anything else as
// its raw JSON text.
func payloadText(payload json.RawMessage) string {
	var text string
	if err := json.Unmarshal(payload, &text); err == nil {
		return text
	}
	return string(payload)
}
