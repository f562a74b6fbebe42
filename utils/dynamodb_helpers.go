package utils

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractNumber reads a numeric attribute. Numbers stored as strings are
// accepted too; ok is false when the field is missing, not numeric or not
// finite.
func ExtractNumber(item map[string]types.AttributeValue, field string) (float64, bool) {
	attr, ok := item[field]
	if !ok {
		return 0, false
	}

	var raw string
	switch v := attr.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = strings.TrimSpace(v.Value)
	default:
		return 0, false
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ExtractInt reads a numeric attribute that fits in an int32, truncating
// fractions.
func ExtractInt(item map[string]types.AttributeValue, field string) (int, bool) {
	n, ok := ExtractNumber(item, field)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// ExtractBool reads a boolean attribute; anything else is false.
func ExtractBool(item map[string]types.AttributeValue, field string) bool {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberBOOL); ok {
			return v.Value
		}
	}
	return false
}

// ExtractStringList reads a list (or string set) of strings, skipping
// elements of any other type.
func ExtractStringList(item map[string]types.AttributeValue, field string) []string {
	out := []string{}
	attr, ok := item[field]
	if !ok {
		return out
	}

	switch v := attr.(type) {
	case *types.AttributeValueMemberL:
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
	case *types.AttributeValueMemberSS:
		out = append(out, v.Value...)
	}
	return out
}

// ExtractTime reads an RFC3339 string or epoch seconds.
func ExtractTime(item map[string]types.AttributeValue, field string) (time.Time, bool) {
	if s := ExtractString(item, field); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			return t, true
		}
	}
	if attr, ok := item[field].(*types.AttributeValueMemberN); ok {
		secs, err := strconv.ParseFloat(attr.Value, 64)
		if err == nil {
			return time.Unix(int64(secs), 0).UTC(), true
		}
	}
	return time.Time{}, false
}

// StringKey builds a single-attribute string key.
func StringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}
