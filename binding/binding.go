package binding

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter 对占位符的取值做后处理，例如 ${user.name|upper}。
type Filter func(string) string

var filters = map[string]Filter{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
}

// Interpolate 将文本中的 ${path.to.value|filter} 替换为 data 中的值。
// 若 data 为空、路径不存在或过滤器未知，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			b.WriteString(rest)
			break
		}
		end += start
		b.WriteString(rest[:start])
		placeholder := rest[start : end+1]
		if val, ok := evaluate(rest[start+2:end], data); ok {
			b.WriteString(val)
		} else {
			b.WriteString(placeholder)
		}
		rest = rest[end+1:]
	}
	return b.String()
}

// Missing 返回文本中无法解析的占位符路径。
func Missing(text string, data any) []string {
	var out []string
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start == -1 {
			return out
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			return out
		}
		end += start
		expr := rest[start+2 : end]
		if _, ok := evaluate(expr, data); !ok {
			out = append(out, strings.TrimSpace(expr))
		}
		rest = rest[end+1:]
	}
}

func evaluate(expr string, data any) (string, bool) {
	if data == nil {
		return "", false
	}
	parts := strings.Split(expr, "|")
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return "", false
	}
	val, ok := resolvePath(data, path)
	if !ok {
		return "", false
	}
	out := format(val)
	for _, name := range parts[1:] {
		f, ok := filters[strings.TrimSpace(name)]
		if !ok {
			return "", false
		}
		out = f(out)
	}
	return out, true
}

// format 输出 JSON 解码后的值，整数形式的浮点数不带小数点。
func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for segment := range strings.SplitSeq(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseSegment 拆分 items[0][1] 形式的路径段。
func parseSegment(segment string) (string, []int, bool) {
	name, rest, _ := strings.Cut(segment, "[")
	if rest == "" {
		return name, nil, !strings.Contains(segment, "[")
	}
	rest = "[" + rest
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}
