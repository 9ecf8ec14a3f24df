// Package jsonlogic turns JSONLogic rules into journey predicates.
//
// The rule is applied to {"value": <extracted value>, "rule": <rule Value>}:
//
//	- field: age
//	  logic: {"and": [{">=": [{"var": "value"}, 18]}, {"<": [{"var": "value"}, 65]}]}
//	  next: working-age
package jsonlogic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/diegoholiveira/jsonlogic"
)

// Compile validates source (a rule map or its JSON text) and returns a predicate.
func Compile(source any) (domain.Predicate, error) {
	var rule []byte
	switch v := source.(type) {
	case string:
		rule = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule: %w", err)
		}
		rule = b
	}

	var probe map[string]any
	if err := json.Unmarshal(rule, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSONLogic rule: %w", err)
	}

	return func(value any, cond domain.Condition) bool {
		matched, err := apply(rule, map[string]any{"value": value, "rule": cond.Value})
		return err == nil && matched
	}, nil
}

func apply(rule []byte, data map[string]any) (bool, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return false, err
	}

	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(rule), bytes.NewReader(dataJSON), &result); err != nil {
		return false, err
	}
	return truthy(strings.TrimSpace(result.String())), nil
}

// truthy follows JSONLogic truthiness for the encoded result.
func truthy(res string) bool {
	switch res {
	case "", "null", "false", "0", `""`, "[]":
		return false
	}
	return true
}
