//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"frontline-lite/difficulty"
	"frontline-lite/replay"
)

type bridgeError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type response struct {
	OK          bool                             `json:"ok"`
	Handle      int                              `json:"handle,omitempty"`
	Adaptation  *difficulty.DifficultyAdaptation `json:"adaptation,omitempty"`
	Settings    *difficulty.DifficultySettings   `json:"settings,omitempty"`
	Profile     *difficulty.PlayerProfile        `json:"profile,omitempty"`
	Insights    *difficulty.DifficultyInsights   `json:"insights,omitempty"`
	Tape        *replay.WireSessionTape          `json:"tape,omitempty"`
	Error       *bridgeError                     `json:"error,omitempty"`
	ReplayError *replay.ReplayError              `json:"replayError,omitempty"`
}

type createRequest struct {
	Variant   string  `json:"variant"`
	SessionID string  `json:"sessionId"`
	Seed      int64   `json:"seed"`
	Epsilon   float64 `json:"epsilon"`
}

type replayRequest struct {
	Spec replay.SessionSpec `json:"spec"`
}

var (
	engines    = map[int]difficulty.Engine{}
	nextHandle = 1
)

func main() {
	js.Global().Set("__difficultyCreate", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(handleCreate(arg(args, 0)))
	}))
	js.Global().Set("__difficultyUpdate", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(withEngine(args, func(e difficulty.Engine) response {
			var u difficulty.MetricsUpdate
			if err := json.Unmarshal([]byte(arg(args, 1)), &u); err != nil {
				return failure("invalid_json", err)
			}
			resp := response{OK: true, Adaptation: e.UpdatePlayerPerformance(u)}
			s := e.Settings()
			resp.Settings = &s
			return resp
		}))
	}))
	js.Global().Set("__difficultySettings", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(withEngine(args, func(e difficulty.Engine) response {
			s := e.Settings()
			return response{OK: true, Settings: &s}
		}))
	}))
	js.Global().Set("__difficultyProfile", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(withEngine(args, func(e difficulty.Engine) response {
			p := e.PlayerProfile()
			return response{OK: true, Profile: &p}
		}))
	}))
	js.Global().Set("__difficultyInsights", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(withEngine(args, func(e difficulty.Engine) response {
			ins := e.Insights()
			return response{OK: true, Insights: &ins}
		}))
	}))
	js.Global().Set("__difficultyReset", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(withEngine(args, func(e difficulty.Engine) response {
			e.Reset()
			s := e.Settings()
			return response{OK: true, Settings: &s}
		}))
	}))
	js.Global().Set("__difficultyDestroy", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(response{Error: &bridgeError{Reason: "invalid_request", Message: "missing handle"}})
		}
		delete(engines, args[0].Int())
		return mustJSON(response{OK: true})
	}))
	js.Global().Set("__difficultyReplay", js.FuncOf(func(this js.Value, args []js.Value) any {
		return mustJSON(handleReplay(arg(args, 0)))
	}))

	select {}
}

func arg(args []js.Value, i int) string {
	if len(args) <= i {
		return ""
	}
	return args[i].String()
}

func failure(reason string, err error) response {
	return response{Error: &bridgeError{Reason: reason, Message: err.Error()}}
}

func handleCreate(raw string) response {
	var req createRequest
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return failure("invalid_json", err)
		}
	}
	cfg := difficulty.DefaultConfig()
	if req.Variant == difficulty.VariantSimple {
		cfg = difficulty.SimpleConfig()
	}
	cfg.SessionID = req.SessionID
	cfg.Seed = req.Seed
	if req.Epsilon > 0 {
		cfg.Epsilon = req.Epsilon
	}
	variant := req.Variant
	if variant == "" {
		variant = difficulty.VariantEnhanced
	}
	e, err := difficulty.NewEngine(variant, cfg)
	if err != nil {
		return failure("create_failed", err)
	}
	h := nextHandle
	nextHandle++
	engines[h] = e
	s := e.Settings()
	return response{OK: true, Handle: h, Settings: &s}
}

func withEngine(args []js.Value, fn func(difficulty.Engine) response) response {
	if len(args) < 1 {
		return response{Error: &bridgeError{Reason: "invalid_request", Message: "missing handle"}}
	}
	e, ok := engines[args[0].Int()]
	if !ok {
		return response{Error: &bridgeError{Reason: "unknown_handle", Message: "engine handle not found"}}
	}
	return fn(e)
}

func handleReplay(raw string) response {
	if raw == "" {
		return response{ReplayError: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"}}
	}
	var req replayRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return response{ReplayError: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()}}
	}
	tape, err := replay.GenerateSessionTape(req.Spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return response{ReplayError: replayErr}
		}
		return response{ReplayError: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()}}
	}
	return response{OK: true, Tape: replay.ToWireSessionTape(tape)}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := response{Error: &bridgeError{Reason: "marshal_failed", Message: err.Error()}}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
