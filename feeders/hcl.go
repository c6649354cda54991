package feeders

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLFeeder reads HCL files. Each top-level block becomes a map keyed by
// its type and top-level attributes become plain values:
//
//	template_component {
//	  anonymous_template_directory = "components/"
//	  profiler                     = false
//	  controllers_json             = null
//	}
//
// Expressions are evaluated without variables or functions.
type HCLFeeder struct {
	verboseDebug
	Path string
}

// NewHCLFeeder creates a new HCLFeeder that reads from the specified HCL file
func NewHCLFeeder(filePath string) *HCLFeeder {
	return &HCLFeeder{Path: filePath}
}

// Feed decodes the HCL file into target through its generic map form.
func (h *HCLFeeder) Feed(target any) error {
	h.debug("HCLFeeder: Starting feed process", "filePath", h.Path)
	data, err := h.decode()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal HCL data: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode HCL file %s: %w", h.Path, err)
	}
	h.debug("HCLFeeder: Feed completed successfully", "filePath", h.Path)
	return nil
}

// FeedKey reads an HCL file and extracts a specific block or attribute
func (h *HCLFeeder) FeedKey(key string, target any) error {
	h.debug("HCLFeeder: Starting FeedKey process", "filePath", h.Path, "key", key)
	return feedKey(h, key, target, json.Marshal, json.Unmarshal, "HCL file")
}

func (h *HCLFeeder) decode() (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(h.Path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrHCLParse, diags.Error())
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrHCLUnsupportedBody, file.Body)
	}
	return decodeBody(body)
}

func decodeBody(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, err := evaluate(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		out[name] = v
	}
	for _, block := range body.Blocks {
		if _, exists := out[block.Type]; exists {
			return nil, fmt.Errorf("%w: %s", ErrHCLDuplicateKey, block.Type)
		}
		nested, err := decodeBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", block.Type, err)
		}
		out[block.Type] = nested
	}
	return out, nil
}

func evaluate(expr hcl.Expression) (any, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrHCLEvaluate, diags.Error())
	}
	return ctyToGo(val)
}

// ctyToGo converts a known cty value to plain Go values.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("%w: unknown value", ErrHCLUnsupportedValue)
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			i, acc := bf.Int64()
			if acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrHCLUnsupportedValue, ty.FriendlyName())
	}
}
