package layout

import (
	"encoding/json"
	"os"
)

// debugDump 是调试 JSON 的顶层结构。
type debugDump struct {
	Text         string   `json:"text"`
	Layout       *Layout  `json:"layout"`
	Height       float64  `json:"height"`
	MaxLineWidth float64  `json:"maxLineWidth"`
	Lines        []string `json:"lineTexts"`
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(text string, l *Layout, path string) error {
	if l == nil {
		return nil
	}
	dump := debugDump{
		Text:         text,
		Layout:       l,
		Height:       l.Height(),
		MaxLineWidth: l.MaxLineWidth(),
	}
	for _, line := range l.Lines {
		dump.Lines = append(dump.Lines, line.Text())
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
