package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
)

// Validate checks a raw model response against AnalysisResultContract and decodes it.
// Any violation is reported as *ierr.ValidationError naming the offending field path.
func Validate(raw []byte) (model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := ValidateInto(AnalysisResultContract, raw, &result); err != nil {
		return model.AnalysisResult{}, err
	}
	if result.IngredientAnalysis == nil {
		result.IngredientAnalysis = []model.Ingredient{}
	}
	return result, nil
}

// ValidateInto checks raw against contract and, only if it conforms, unmarshals it into v.
func ValidateInto(contract Field, raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var candidate any
	if err := dec.Decode(&candidate); err != nil {
		return &ierr.ValidationError{Reason: fmt.Sprintf("response is not valid JSON: %v", err)}
	}
	if dec.More() {
		return &ierr.ValidationError{Reason: "unexpected data after JSON document"}
	}

	if err := contract.check("", candidate); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &ierr.ValidationError{Reason: err.Error()}
	}
	return nil
}

func (f Field) check(path string, v any) error {
	switch f.Kind {
	case String:
		s, ok := v.(string)
		if !ok {
			return typeMismatch(path, f.Kind, v)
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			return &ierr.ValidationError{
				Path:   path,
				Reason: fmt.Sprintf("value %q is not one of %s", s, strings.Join(f.Enum, ", ")),
			}
		}

	case Array:
		items, ok := v.([]any)
		if !ok {
			return typeMismatch(path, f.Kind, v)
		}
		if f.Items == nil {
			return nil
		}
		for i, item := range items {
			if err := f.Items.check(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}

	case Object:
		obj, ok := v.(map[string]any)
		if !ok {
			return typeMismatch(path, f.Kind, v)
		}
		// undeclared keys are rejected: decoding into Go structs folds case,
		// so a near-miss key would otherwise bypass the checks below
		for _, key := range slices.Sorted(maps.Keys(obj)) {
			if !slices.ContainsFunc(f.Fields, func(c Field) bool { return c.Name == key }) {
				return &ierr.ValidationError{Path: joinPath(path, key), Reason: "field is not part of the contract"}
			}
		}
		for _, child := range f.Fields {
			childPath := joinPath(path, child.Name)
			value, present := obj[child.Name]
			// optional fields may be omitted or null
			if child.Optional && (!present || value == nil) {
				continue
			}
			if !present {
				return &ierr.ValidationError{Path: childPath, Reason: "required field is missing"}
			}
			if err := child.check(childPath, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func typeMismatch(path string, want Kind, got any) error {
	return &ierr.ValidationError{
		Path:   path,
		Reason: fmt.Sprintf("expected %s, got %s", want, jsonType(got)),
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
