// Package checklist converts checklist payloads to and from the single
// string blob a note stores them in.
package checklist

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/stickyboard/core/internal/domain/entities"
)

var api = sonic.ConfigStd

// Decode parses a stored or submitted checklist. It never fails: input
// that is not a list yields an empty checklist and elements that are not
// objects are dropped. Missing ids are generated, missing text becomes
// empty and completed is coerced to a boolean.
func Decode(raw string) []entities.TaskItem {
	var elems []interface{}
	if err := api.UnmarshalFromString(strings.TrimSpace(raw), &elems); err != nil {
		return []entities.TaskItem{}
	}

	items := make([]entities.TaskItem, 0, len(elems))
	for _, elem := range elems {
		obj, ok := elem.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, entities.TaskItem{
			ID:        decodeID(obj["id"]),
			Text:      decodeText(obj["text"]),
			Completed: truthy(obj["completed"]),
		})
	}
	return items
}

// Encode serializes items in order, one {id, text, completed} object each.
func Encode(items []entities.TaskItem) (string, error) {
	if items == nil {
		items = []entities.TaskItem{}
	}
	return api.MarshalToString(items)
}

// IsList reports whether raw is a JSON array.
func IsList(raw string) bool {
	var elems []interface{}
	return api.UnmarshalFromString(strings.TrimSpace(raw), &elems) == nil && elems != nil
}

// Normalize trims item text and gives every item an id that is unique
// within the list. Order is kept.
func Normalize(items []entities.TaskItem) []entities.TaskItem {
	seen := make(map[string]bool, len(items))
	out := make([]entities.TaskItem, 0, len(items))
	for _, item := range items {
		item.Text = strings.TrimSpace(item.Text)
		if item.ID == "" || seen[item.ID] {
			item.ID = uuid.NewString()
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

func decodeID(v interface{}) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return uuid.NewString()
}

func decodeText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func truthy(v interface{}) bool {
	switch c := v.(type) {
	case bool:
		return c
	case float64:
		return c != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(c)); err == nil {
			return b
		}
		return c != ""
	case []interface{}:
		return len(c) > 0
	case map[string]interface{}:
		return len(c) > 0
	default:
		return false
	}
}
