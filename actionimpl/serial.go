package actionimpl

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"time"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
	"go.bug.st/serial"
)

func init() {
	action.Register("SerialCommandAction", newSerialCommandAction)
}

// SerialCommandAction sends one line of text to a serial device and blocks
// until a line matching response_pattern arrives (SUCCESS) or read_timeout_ms
// elapses (ERROR). Not present in spec.md or original_source: recovered from
// the teacher's marlin/grbl device-control lineage, where an "ok" line
// terminates a command's response — generalized here to an arbitrary
// regexp so it isn't tied to one firmware dialect. Illustrative only.
type SerialCommandAction struct {
	portName    action.ConfigParameter[string]
	baudRate    action.ConfigParameter[int]
	command     action.ConfigParameter[string]
	response    *regexp.Regexp
	readTimeout time.Duration
}

func newSerialCommandAction(params map[string]interface{}) (action.ActionImpl, error) {
	portName, err := paramOrError(params, "port", action.ParseString)
	if err != nil {
		return nil, err
	}
	baudRate, err := paramOrError(params, "baud_rate", action.ParseInt)
	if err != nil {
		return nil, err
	}
	command, err := paramOrError(params, "command", action.ParseString)
	if err != nil {
		return nil, err
	}
	patternRaw, ok := params["response_pattern"]
	if !ok {
		return nil, fmt.Errorf("%w: SerialCommandAction requires response_pattern", petri.ErrConfigInvalid)
	}
	patternStr, ok := patternRaw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: response_pattern must be a string", petri.ErrConfigInvalid)
	}
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid response_pattern: %v", petri.ErrConfigInvalid, err)
	}

	readTimeoutMs := 2000
	if v, ok := params["read_timeout_ms"]; ok {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: read_timeout_ms must be a number", petri.ErrConfigInvalid)
		}
		readTimeoutMs = int(f)
	}

	return &SerialCommandAction{
		portName:    portName,
		baudRate:    baudRate,
		command:     command,
		response:    pattern,
		readTimeout: time.Duration(readTimeoutMs) * time.Millisecond,
	}, nil
}

func (s *SerialCommandAction) Callable(tok *petri.Token) petri.OutcomeKind {
	portName, err := s.portName.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}
	baud, err := s.baudRate.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}
	command, err := s.command.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return petri.ActionFailed
	}
	defer port.Close()

	if err := port.SetReadTimeout(s.readTimeout); err != nil {
		return petri.ActionFailed
	}

	if _, err := port.Write([]byte(command + "\n")); err != nil {
		return petri.ActionFailed
	}

	scanner := bufio.NewScanner(port)
	deadline := time.Now().Add(s.readTimeout)
	for scanner.Scan() && time.Now().Before(deadline) {
		line := strings.TrimSpace(scanner.Text())
		if s.response.MatchString(line) {
			return petri.Success
		}
	}
	return petri.ActionFailed
}
