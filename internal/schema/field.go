package schema

import (
	"fmt"
	"strings"
)

type Kind int

const (
	String Kind = iota
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Field is one node of an output contract. Objects list their children in Fields,
// arrays describe their element in Items. A non-empty Enum closes a string field.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Optional    bool
	Enum        []string
	Fields      []Field
	Items       *Field
}

func Str(name, description string) Field {
	return Field{Name: name, Kind: String, Description: description}
}

func OptionalStr(name, description string) Field {
	return Field{Name: name, Kind: String, Description: description, Optional: true}
}

func EnumOf(name, description string, values ...string) Field {
	return Field{Name: name, Kind: String, Description: description, Enum: values}
}

func Obj(name, description string, fields ...Field) Field {
	return Field{Name: name, Kind: Object, Description: description, Fields: fields}
}

func ArrayOf(name, description string, item Field) Field {
	return Field{Name: name, Kind: Array, Description: description, Items: &item}
}

// Required returns the names of the mandatory children of an object field.
func (f Field) Required() []string {
	names := []string{}
	for _, child := range f.Fields {
		if !child.Optional {
			names = append(names, child.Name)
		}
	}
	return names
}

// Describe renders the per-field guidance that is forwarded to the model.
func Describe(f Field) string {
	sb := strings.Builder{}
	describe(&sb, "", f)
	return sb.String()
}

func describe(sb *strings.Builder, path string, f Field) {
	switch f.Kind {
	case Object:
		for _, child := range f.Fields {
			describe(sb, joinPath(path, child.Name), child)
		}
		return
	case Array:
		writeLine(sb, path, f, "list")
		if f.Items != nil && f.Items.Kind == Object {
			for _, child := range f.Items.Fields {
				describe(sb, path+"[]."+child.Name, child)
			}
		}
		return
	}
	writeLine(sb, path, f, f.Kind.String())
}

func writeLine(sb *strings.Builder, path string, f Field, kind string) {
	sb.WriteString(fmt.Sprintf("- %s (%s", path, kind))
	if f.Optional {
		sb.WriteString(", optional")
	}
	if len(f.Enum) > 0 {
		sb.WriteString(", one of: " + strings.Join(f.Enum, ", "))
	}
	sb.WriteString(")")
	if f.Description != "" {
		sb.WriteString(": " + f.Description)
	}
	sb.WriteString("\n")
}

// JSONSchema renders the contract as a JSON Schema document.
func JSONSchema(f Field) map[string]any {
	s := map[string]any{}
	if f.Description != "" {
		s["description"] = f.Description
	}

	switch f.Kind {
	case String:
		s["type"] = "string"
		if len(f.Enum) > 0 {
			s["enum"] = f.Enum
		}
	case Array:
		s["type"] = "array"
		if f.Items != nil {
			s["items"] = JSONSchema(*f.Items)
		}
	case Object:
		properties := map[string]any{}
		for _, child := range f.Fields {
			properties[child.Name] = JSONSchema(child)
		}
		s["type"] = "object"
		s["properties"] = properties
		s["required"] = f.Required()
		s["additionalProperties"] = false
	}

	return s
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
