package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

// rawStep is the wire shape of one chain step, decoded from either format
// before being converted into a pipeline.Step.
type rawStep struct {
	Filter string         `json:"filter" yaml:"filter"`
	Action string         `json:"action" yaml:"action"`
	Args   map[string]any `json:"args" yaml:"args"`
	Then   *string        `json:"then" yaml:"then"`
	Else   *string        `json:"else" yaml:"else"`
}

// parseChains parses the top-level "actions" mapping into an ordered slice
// of pipeline.Chain, preserving the chain declaration order the workflow
// builder's dangling/fallthrough rules depend on (SPEC_FULL.md §4.6/§8).
// Neither encoding/json nor gopkg.in/yaml.v3 preserves object/mapping key
// order when decoding into a Go map, so the "actions" value is walked by
// hand: token-by-token for JSON, node-by-node for YAML. Everything below
// "actions" (a step's own fields, a step's args) decodes through the
// ordinary struct/map path, since only chain order is semantically
// meaningful.
func parseChains(path string, raw []byte) ([]pipeline.Chain, error) {
	switch extOf(path) {
	case ".json":
		return parseChainsJSON(raw)
	case ".yaml", ".yml":
		return parseChainsYAML(raw)
	default:
		return nil, domain.NewError(domain.ErrConfig, "unrecognized configuration extension for "+path)
	}
}

func parseChainsJSON(raw []byte) ([]pipeline.Chain, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := expectJSONDelim(dec, '{'); err != nil {
		return nil, err
	}
	var chains []pipeline.Chain
	found := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, wrapJSONErr(err)
		}
		key, _ := keyTok.(string)
		if key != "actions" {
			var discard any
			if err := dec.Decode(&discard); err != nil {
				return nil, wrapJSONErr(err)
			}
			continue
		}
		found = true
		chains, err = decodeActionsObjectJSON(dec)
		if err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, domain.NewError(domain.ErrConfigValue, `configuration is missing the required "actions" key`)
	}
	return chains, nil
}

func decodeActionsObjectJSON(dec *json.Decoder) ([]pipeline.Chain, error) {
	if err := expectJSONDelim(dec, '{'); err != nil {
		return nil, err
	}
	var chains []pipeline.Chain
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, wrapJSONErr(err)
		}
		name, _ := nameTok.(string)
		var steps []rawStep
		if err := dec.Decode(&steps); err != nil {
			return nil, wrapJSONErr(err)
		}
		chainSteps, err := convertSteps(steps)
		if err != nil {
			return nil, err
		}
		chains = append(chains, pipeline.Chain{Name: name, Steps: chainSteps})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, wrapJSONErr(err)
	}
	return chains, nil
}

func expectJSONDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return wrapJSONErr(err)
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return domain.NewError(domain.ErrConfigValue, fmt.Sprintf("expected %q in configuration", want))
	}
	return nil
}

func wrapJSONErr(err error) error {
	return domain.WrapError(domain.ErrConfigValue, "parse json configuration", err)
}

func parseChainsYAML(raw []byte) ([]pipeline.Chain, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrConfigValue, "parse yaml configuration", err)
	}
	if len(doc.Content) == 0 {
		return nil, domain.NewError(domain.ErrConfigValue, "empty configuration document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, domain.NewError(domain.ErrConfigValue, "configuration document must be a mapping")
	}

	var actionsNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "actions" {
			actionsNode = root.Content[i+1]
			break
		}
	}
	if actionsNode == nil {
		return nil, domain.NewError(domain.ErrConfigValue, `configuration is missing the required "actions" key`)
	}
	if actionsNode.Kind != yaml.MappingNode {
		return nil, domain.NewError(domain.ErrConfigValue, `"actions" must be a mapping of chain name to step list`)
	}

	var chains []pipeline.Chain
	for i := 0; i+1 < len(actionsNode.Content); i += 2 {
		nameNode := actionsNode.Content[i]
		chainNode := actionsNode.Content[i+1]
		var steps []rawStep
		if err := chainNode.Decode(&steps); err != nil {
			return nil, domain.WrapError(domain.ErrConfigValue, "parse chain "+nameNode.Value, err)
		}
		chainSteps, err := convertSteps(steps)
		if err != nil {
			return nil, err
		}
		chains = append(chains, pipeline.Chain{Name: nameNode.Value, Steps: chainSteps})
	}
	return chains, nil
}

func convertSteps(raw []rawStep) ([]pipeline.Step, error) {
	steps := make([]pipeline.Step, 0, len(raw))
	for _, r := range raw {
		args, err := convertArgs(r.Args)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step{
			Filter: r.Filter,
			Action: r.Action,
			Args:   args,
			Then:   r.Then,
			Else:   r.Else,
		})
	}
	return steps, nil
}

func convertArgs(raw map[string]any) (domain.ModuleArgs, error) {
	rec := domain.NewRecord()
	for k, v := range raw {
		val, err := toValue(v)
		if err != nil {
			return nil, domain.WrapError(domain.ErrConfigValue, "arg "+k, err)
		}
		rec.Set(k, val)
	}
	return rec, nil
}

// toValue converts one decoded JSON/YAML scalar or collection into a
// domain.Value, rejecting nulls and fractional numbers (SPEC_FULL.md §3.1).
func toValue(v any) (domain.Value, error) {
	switch t := v.(type) {
	case nil:
		return domain.Value{}, domain.NewError(domain.ErrConfigValue, "null is not a supported value")
	case bool:
		return domain.BoolValue(t), nil
	case string:
		return domain.StringValue(t), nil
	case json.Number:
		if err := rejectFloats(t); err != nil {
			return domain.Value{}, err
		}
		i, err := t.Int64()
		if err != nil {
			return domain.Value{}, domain.WrapError(domain.ErrConfigValue, "not an integer: "+t.String(), err)
		}
		return domain.IntValue(i), nil
	case int:
		return domain.IntValue(int64(t)), nil
	case int64:
		return domain.IntValue(t), nil
	case uint64:
		return domain.IntValue(int64(t)), nil
	case float32, float64:
		return domain.Value{}, domain.NewError(domain.ErrConfigValue, fmt.Sprintf("fractional numbers are not supported: %v", t))
	case []any:
		items := make([]domain.Value, 0, len(t))
		for _, e := range t {
			ev, err := toValue(e)
			if err != nil {
				return domain.Value{}, err
			}
			items = append(items, ev)
		}
		return domain.ListValue(items), nil
	case map[string]any:
		m := make(map[string]domain.Value, len(t))
		for k, e := range t {
			ev, err := toValue(e)
			if err != nil {
				return domain.Value{}, err
			}
			m[k] = ev
		}
		return domain.MapValue(m), nil
	default:
		return domain.Value{}, domain.NewError(domain.ErrConfigValue, fmt.Sprintf("unsupported value type %T", v))
	}
}
