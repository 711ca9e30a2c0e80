package adapter

import (
	"context"

	"github.com/mitchellh/mapstructure"

	"github.com/Cyclone1070/iavtools/internal/tool"
)

// BaseAdapter provides common adapter functionality using generics:
// argument decoding, tool execution and output rendering.
//
// Type Parameters:
//   - Req: the request type (e.g., file.ReadFileRequest)
//   - Resp: the response type (e.g., file.ReadFileResponse)
type BaseAdapter[Req, Resp any] struct {
	declaration tool.Declaration
	run         func(context.Context, *Req) (*Resp, error)
	render      func(*Resp) (string, bool)
}

// NewBaseAdapter creates an adapter around a tool's Run method. render turns
// the response into output text and reports whether it is an error result.
func NewBaseAdapter[Req, Resp any](
	declaration tool.Declaration,
	run func(context.Context, *Req) (*Resp, error),
	render func(*Resp) (string, bool),
) *BaseAdapter[Req, Resp] {
	if run == nil {
		panic("run is required")
	}
	if render == nil {
		panic("render is required")
	}
	return &BaseAdapter[Req, Resp]{
		declaration: declaration,
		run:         run,
		render:      render,
	}
}

// Name implements adapter.Tool
func (b *BaseAdapter[Req, Resp]) Name() string {
	return b.declaration.Name
}

// Declaration implements adapter.Tool
func (b *BaseAdapter[Req, Resp]) Declaration() tool.Declaration {
	return b.declaration
}

// Execute implements adapter.Tool
func (b *BaseAdapter[Req, Resp]) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	req := new(Req)
	if err := decodeArgs(args, req); err != nil {
		return nil, &InvalidArgumentError{Tool: b.Name(), Cause: err}
	}

	resp, err := b.run(ctx, req)
	if err != nil {
		return nil, err
	}

	output, isError := b.render(resp)
	return &Result{ID: b.Name(), Output: output, Error: isError}, nil
}

// decodeArgs maps the flat argument object onto a request using its json
// tags. Unknown keys are rejected so typos surface instead of being ignored.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
