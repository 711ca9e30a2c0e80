package adapter

import (
	"google.golang.org/genai"

	"github.com/Cyclone1070/iavtools/internal/tool"
)

// GenaiTools converts the registered declarations into a Gemini tool list.
func (r *Registry) GenaiTools() []*genai.Tool {
	return ToGenaiTools(r.Declarations())
}

// ToGenaiTools converts declarations into a single Gemini tool holding one
// function declaration each.
func ToGenaiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		functionDeclarations = append(functionDeclarations, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  toGenaiSchema(d.Parameters),
		})
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

func toGenaiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Enum) > 0 {
		out.Enum = s.Enum
	}
	if len(s.Required) > 0 {
		out.Required = s.Required
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
