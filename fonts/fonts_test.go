package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestLoadBuiltin(t *testing.T) {
	data, err := Load("builtin:gobold", "")
	if err != nil {
		t.Fatalf("加载内置字体失败: %v", err)
	}
	if !bytes.Equal(data, gobold.TTF) {
		t.Fatalf("内置字体内容不一致")
	}
	if _, err := Load("builtin:nope", ""); err == nil {
		t.Fatalf("不存在的内置字体应报错")
	}
}

func TestLoadRelativePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.ttf"), []byte("font"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := Load("a.ttf", dir)
	if err != nil {
		t.Fatalf("按相对路径加载失败: %v", err)
	}
	if string(data) != "font" {
		t.Fatalf("读取内容错误: %q", data)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(""); !ok {
		t.Fatalf("空族名应返回默认字体")
	}
	if err := r.RegisterSource("Bangers", "builtin:goregular", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Lookup("Bangers"); !ok {
		t.Fatalf("注册后应能查到")
	}
	if err := r.RegisterSource("", "builtin:gobold", ""); err == nil {
		t.Fatalf("空族名应报错")
	}
	got := r.Families()
	if len(got) != 3 || got[0] != "Bangers" {
		t.Fatalf("族名列表错误: %v", got)
	}
}
