package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// builtins are the ECMAScript globals a session keeps. Everything else the
// engine defines is deleted before the script runs.
var builtins = map[string]bool{
	"globalThis": true, "undefined": true, "NaN": true, "Infinity": true,
	"Object": true, "Function": true, "Array": true, "String": true,
	"Number": true, "Boolean": true, "Symbol": true, "BigInt": true,
	"Date": true, "RegExp": true, "Promise": true, "Proxy": true,
	"Reflect": true, "JSON": true, "Math": true,
	"Map": true, "Set": true, "WeakMap": true, "WeakSet": true, "WeakRef": true,
	"Error": true, "AggregateError": true, "EvalError": true, "RangeError": true,
	"ReferenceError": true, "SyntaxError": true, "TypeError": true, "URIError": true,
	"ArrayBuffer": true, "DataView": true, "Int8Array": true, "Uint8Array": true,
	"Uint8ClampedArray": true, "Int16Array": true, "Uint16Array": true,
	"Int32Array": true, "Uint32Array": true, "Float32Array": true,
	"Float64Array": true, "BigInt64Array": true, "BigUint64Array": true,
	"parseInt": true, "parseFloat": true, "isNaN": true, "isFinite": true,
	"encodeURI": true, "encodeURIComponent": true, "decodeURI": true,
	"decodeURIComponent": true, "escape": true, "unescape": true, "eval": true,
}

type deferredJob struct {
	id   int64
	due  time.Time
	fn   goja.Callable
	args []goja.Value
}

// session is one isolated runtime. It is never reused.
type session struct {
	id         string
	ctx        context.Context
	vm         *goja.Runtime
	stringify  goja.Callable
	errorCtor  *goja.Object
	console    []string
	jobs       []*deferredJob
	nextJobID  int64
	fetcher    *fetcher
	stopSignal func() bool
}

type sessionOptions struct {
	sandboxDir string
	fetcher    *fetcher // nil disables fetch
}

func newSession(ctx context.Context, id string, opts sessionOptions) (*session, error) {
	vm := goja.New()
	s := &session{id: id, ctx: ctx, vm: vm, fetcher: opts.fetcher}

	global := vm.GlobalObject()
	names, err := vm.RunString("Object.getOwnPropertyNames(globalThis)")
	if err != nil {
		return nil, fmt.Errorf("listing globals: %w", err)
	}
	list, _ := names.Export().([]any)
	for _, name := range list {
		name, _ := name.(string)
		if name != "" && !builtins[name] {
			if err := global.Delete(name); err != nil {
				return nil, fmt.Errorf("removing global %s: %w", name, err)
			}
		}
	}

	stringify, ok := goja.AssertFunction(global.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return nil, errors.New("JSON.stringify is not callable")
	}
	s.stringify = stringify
	s.errorCtor = global.Get("Error").ToObject(vm)

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error"} {
		if err := console.Set(level, s.consoleFunc(level)); err != nil {
			return nil, err
		}
	}
	grants := map[string]any{
		"console":      console,
		"setTimeout":   s.setTimeout,
		"clearTimeout": s.clearTimeout,
		"SANDBOX_DIR":  opts.sandboxDir,
	}
	if s.fetcher != nil {
		grants["fetch"] = s.fetch
	}
	for name, value := range grants {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}

	s.stopSignal = context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	return s, nil
}

// close releases everything the session holds. Safe to call more than once.
func (s *session) close() {
	if s.stopSignal != nil {
		s.stopSignal()
	}
	s.jobs = nil
	s.stringify = nil
	s.errorCtor = nil
	s.vm = nil
}

// run executes code and waits for deferred jobs and a returned promise.
func (s *session) run(code string) (string, error) {
	prog, err := compile(code)
	if err != nil {
		return "", err
	}
	v, err := s.vm.RunProgram(prog)
	if err != nil {
		return "", err
	}
	if err := s.drainJobs(); err != nil {
		return "", err
	}
	return s.settle(v)
}

// compile parses code as a script. A body that only parses inside an async
// function (top-level await) is wrapped in one.
func compile(code string) (*goja.Program, error) {
	prog, err := goja.Compile("script.js", code, false)
	if err == nil || !strings.Contains(code, "await") {
		return prog, err
	}
	wrapped, werr := goja.Compile("script.js", "(async () => {\n"+code+"\n})()", false)
	if werr != nil {
		return nil, err
	}
	return wrapped, nil
}

func (s *session) settle(v goja.Value) (string, error) {
	if v == nil || goja.IsUndefined(v) {
		return "", nil
	}
	p, ok := v.Export().(*goja.Promise)
	if !ok {
		return s.render(v), nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		if goja.IsUndefined(p.Result()) {
			return "", nil
		}
		return s.render(p.Result()), nil
	case goja.PromiseStateRejected:
		return "", &rejectionError{reason: s.render(p.Result())}
	default:
		return "", errPromisePending
	}
}

// drainJobs runs setTimeout callbacks in due order, one at a time, sleeping
// until each is due. It stops at the first error or when the deadline passes.
func (s *session) drainJobs() error {
	for len(s.jobs) > 0 {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		sort.SliceStable(s.jobs, func(i, j int) bool {
			return s.jobs[i].due.Before(s.jobs[j].due)
		})
		job := s.jobs[0]
		s.jobs = s.jobs[1:]

		if wait := time.Until(job.due); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-s.ctx.Done():
				timer.Stop()
				return s.ctx.Err()
			case <-timer.C:
			}
		}
		if _, err := job.fn(goja.Undefined(), job.args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) setTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(s.vm.NewTypeError("setTimeout callback must be a function"))
	}
	delay := call.Argument(1).ToInteger()
	if delay < 0 {
		delay = 0
	}
	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = append(args, call.Arguments[2:]...)
	}
	s.nextJobID++
	s.jobs = append(s.jobs, &deferredJob{
		id:   s.nextJobID,
		due:  time.Now().Add(time.Duration(delay) * time.Millisecond),
		fn:   fn,
		args: args,
	})
	return s.vm.ToValue(s.nextJobID)
}

func (s *session) clearTimeout(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	for i, job := range s.jobs {
		if job.id == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			break
		}
	}
	return goja.Undefined()
}

func (s *session) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = s.render(arg)
		}
		line := strings.Join(parts, " ")
		if level == "warn" || level == "error" {
			line = "[" + level + "] " + line
		}
		s.console = append(s.console, line)
		return goja.Undefined()
	}
}

// render formats a value the way console output shows it: strings raw,
// primitives via String, objects as JSON with a String fallback.
func (s *session) render(v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if obj.ClassName() == "Error" || s.vm.InstanceOf(obj, s.errorCtor) {
		return obj.String()
	}
	out, err := s.stringify(goja.Undefined(), obj)
	if err != nil || out == nil || goja.IsUndefined(out) {
		return obj.String()
	}
	return out.String()
}

type rejectionError struct {
	reason string
}

func (e *rejectionError) Error() string {
	return "promise rejected: " + e.reason
}
