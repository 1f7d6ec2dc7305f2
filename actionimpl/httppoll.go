package actionimpl

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	petri "github.com/bnetrun/bnet"
	"github.com/bnetrun/bnet/action"
)

func init() {
	action.Register("HTTPPollAction", newHTTPPollAction)
}

// HTTPPollAction drives the two-phase protocol from original_source's
// HttpGetAction: POST execute_path once to start the remote action, then
// POST get_status_path on later invocations while it is in flight.
//
// Unlike the original (and actionimpl.TimerAction), this implementation's
// Callable is non-blocking — a request is quick — and legitimately returns
// IN_PROGRESS as a *terminal* outcome for that invocation. package action's
// Collect treats a task that finished with IN_PROGRESS as eligible for a
// fresh Dispatch next epoch rather than wedging it, matching §6.3's "each
// invocation is a fresh query".
type HTTPPollAction struct {
	host          action.ConfigParameter[string]
	port          action.ConfigParameter[int]
	executePath   action.ConfigParameter[string]
	getStatusPath action.ConfigParameter[string]
	client        *http.Client

	mu     sync.Mutex
	inExec map[string]bool
}

func newHTTPPollAction(params map[string]interface{}) (action.ActionImpl, error) {
	host, err := paramOrError(params, "host", action.ParseString)
	if err != nil {
		return nil, err
	}
	port, err := paramOrError(params, "port", action.ParseInt)
	if err != nil {
		return nil, err
	}
	executePath, err := paramOrError(params, "execute_path", action.ParseString)
	if err != nil {
		return nil, err
	}
	getStatusPath, err := paramOrError(params, "get_status_path", action.ParseString)
	if err != nil {
		return nil, err
	}
	return &HTTPPollAction{
		host:          host,
		port:          port,
		executePath:   executePath,
		getStatusPath: getStatusPath,
		client:        &http.Client{Timeout: 5 * time.Second},
		inExec:        make(map[string]bool),
	}, nil
}

func paramOrError[T any](params map[string]interface{}, key string, parse func(interface{}) (action.ConfigParameter[T], error)) (action.ConfigParameter[T], error) {
	raw, ok := params[key]
	if !ok {
		var zero action.ConfigParameter[T]
		return zero, fmt.Errorf("%w: HTTPPollAction requires %q", petri.ErrConfigInvalid, key)
	}
	return parse(raw)
}

func (h *HTTPPollAction) Callable(tok *petri.Token) petri.OutcomeKind {
	host, err := h.host.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}
	port, err := h.port.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}
	executePath, err := h.executePath.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}
	getStatusPath, err := h.getStatusPath.Get(tok)
	if err != nil {
		return petri.ActionFailed
	}

	actionID := fmt.Sprintf("%s:%d%s", host, port, executePath)

	h.mu.Lock()
	inExecution := h.inExec[actionID]
	h.mu.Unlock()

	var outcome petri.OutcomeKind
	if inExecution {
		outcome = h.request(host, port, getStatusPath)
		if outcome != petri.InProgress {
			h.mu.Lock()
			delete(h.inExec, actionID)
			h.mu.Unlock()
		}
	} else {
		outcome = h.request(host, port, executePath)
		if outcome == petri.InProgress {
			h.mu.Lock()
			h.inExec[actionID] = true
			h.mu.Unlock()
		}
	}
	return outcome
}

func (h *HTTPPollAction) request(host string, port int, path string) petri.OutcomeKind {
	url := fmt.Sprintf("http://%s:%d%s", host, port, path)
	resp, err := h.client.Post(url, "application/json", bytes.NewReader(nil))
	if err != nil {
		return petri.ActionFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return petri.ActionFailed
	}

	switch petri.OutcomeKind(string(bytes.TrimSpace(body))) {
	case petri.Success:
		return petri.Success
	case petri.Failure:
		return petri.Failure
	case petri.InProgress:
		return petri.InProgress
	case petri.ActionFailed:
		return petri.ActionFailed
	default:
		return petri.ActionFailed
	}
}
