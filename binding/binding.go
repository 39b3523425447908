package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Expand 将文本中的 ${path.to.value|filter} 替换为 data 中的值。
// 缺失或为空的占位符替换为空串，complete 为 false；调用方据此决定是否省略整行。
// 不含占位符的文本原样返回，complete 为 true。
func Expand(text string, data any) (out string, complete bool) {
	complete = true
	out = exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			complete = false
			return ""
		}
		val, ok := Resolve(data, groups[1])
		if !ok || strings.TrimSpace(val) == "" {
			complete = false
			return ""
		}
		return val
	})
	return out, complete
}

// Resolve 解析单个表达式 "path|filter"，返回格式化后的字符串。
func Resolve(data any, expr string) (string, bool) {
	path, filter, _ := strings.Cut(expr, "|")
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	val, ok := Lookup(data, path)
	if !ok || val == nil {
		return "", false
	}
	return applyFilter(strings.TrimSpace(filter), val)
}

// Lookup 按 a.b[0].c 形式的路径取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// List 取出路径上的数组。
func List(data any, path string) ([]any, bool) {
	val, ok := Lookup(data, path)
	if !ok {
		return nil, false
	}
	list, ok := val.([]any)
	return list, ok
}

// Decimal 将 JSON 数字、数字字符串或 Go 数值转换为十进制数。
func Decimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("无法将 %T 转为数值", v)
	}
}

// LookupDecimal 组合 Lookup 与 Decimal；路径缺失时 ok 为 false。
func LookupDecimal(data any, path string) (d decimal.Decimal, ok bool, err error) {
	val, found := Lookup(data, path)
	if !found || val == nil {
		return decimal.Decimal{}, false, nil
	}
	d, err = Decimal(val)
	if err != nil {
		return decimal.Decimal{}, true, fmt.Errorf("字段 %s: %w", path, err)
	}
	return d, true, nil
}

func applyFilter(filter string, val any) (string, bool) {
	switch filter {
	case "":
		return fmt.Sprint(val), true
	case "datetime":
		return formatTime(val, "2006-01-02 15:04")
	case "date":
		return formatTime(val, "2006-01-02")
	case "money":
		d, err := Decimal(val)
		if err != nil {
			return "", false
		}
		return d.Round(2).StringFixed(2), true
	case "upper":
		return strings.ToUpper(fmt.Sprint(val)), true
	default:
		return fmt.Sprint(val), true
	}
}

// formatTime 以 UTC 输出时间；无法解析时保留原文。
func formatTime(val any, layout string) (string, bool) {
	raw := strings.TrimSpace(fmt.Sprint(val))
	if raw == "" {
		return "", false
	}
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(l, raw); err == nil {
			return t.UTC().Format(layout), true
		}
	}
	return raw, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
