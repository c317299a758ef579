package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/nutrilabel/pkg/admin"
	"github.com/matzehuels/nutrilabel/pkg/errors"
)

const testSheet = `Product,Serving Size,Energy,Total Fat,Saturated Fat,Trans Fat,Cholesterol,Sodium,Total Carbohydrate,Dietary Fiber,Total Sugars,Added Sugars,Protein
Granola Bar,40g,180,7,1,0,0,95,27,3,10,6,3
Trail Mix,30g,150,9,1.5,0,0,60,13,2,8,4,5
Broken Bar,40g,abc,7,1,0,0,95,27,3,10,6,3
`

// testConfig serves testSheet over HTTP and writes a config file pointing at
// it, with snapshots in a temp dir.
func testConfig(t *testing.T) (configPath, cacheDir string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, testSheet)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	configPath = filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[sheet]\nurl = %q\n\n[cache]\ndir = %q\n", srv.URL+"/sheet.csv", cacheDir)
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, cacheDir
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, configPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHashPasswordCommand(t *testing.T) {
	cfg, _ := testConfig(t)
	want := admin.HashPassword("s3cret") + "\n"

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr bool
	}{
		{"argument", "", []string{"s3cret"}, false},
		{"stdin", "s3cret\n", nil, false},
		{"stdin without newline", "s3cret", nil, false},
		{"empty stdin", "", nil, true},
		{"blank line", "\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, cfg, tt.stdin, append([]string{"hash-password"}, tt.args...)...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("hash-password: %v", err)
			}
			if out != want {
				t.Errorf("output = %q, want %q", out, want)
			}
		})
	}
}

func TestProductsJSON(t *testing.T) {
	cfg, _ := testConfig(t)
	out, err := run(t, cfg, "", "products", "--json")
	if err != nil {
		t.Fatalf("products: %v", err)
	}

	var records []struct {
		Name     string  `json:"name"`
		Calories float64 `json:"calories"`
	}
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (the invalid row is skipped)", len(records))
	}
	names := map[string]float64{}
	for _, r := range records {
		names[r.Name] = r.Calories
	}
	if names["Granola Bar"] != 180 || names["Trail Mix"] != 150 {
		t.Errorf("records = %+v", records)
	}
}

func TestProductsTable(t *testing.T) {
	cfg, _ := testConfig(t)
	out, err := run(t, cfg, "", "products")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	for _, want := range []string{"Product", "Granola Bar", "Trail Mix", "180"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Broken Bar") {
		t.Error("skipped row should not be listed")
	}
}

func TestRenderCommand(t *testing.T) {
	cfg, _ := testConfig(t)
	dir := filepath.Join(t.TempDir(), "labels")

	if _, err := run(t, cfg, "", "render", "Granola Bar", "Trail Mix", "-f", "pdf, svg,pdf", "-o", dir); err != nil {
		t.Fatalf("render: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	want := []string{"Granola Bar.pdf", "Granola Bar.svg", "Trail Mix.pdf", "Trail Mix.svg"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("files = %v, want %v", got, want)
	}

	pdf, _ := os.ReadFile(filepath.Join(dir, "Granola Bar.pdf"))
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("PDF output missing header")
	}
	svg, _ := os.ReadFile(filepath.Join(dir, "Trail Mix.svg"))
	if !bytes.Contains(svg, []byte(">30g<")) {
		t.Error("SVG should contain the Trail Mix serving size")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	cfg, _ := testConfig(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown product", []string{"render", "Mystery Bar"}, errors.ErrCodeProductNotFound},
		{"skipped product", []string{"render", "Broken Bar"}, errors.ErrCodeProductNotFound},
		{"bad format", []string{"render", "Granola Bar", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"empty format", []string{"render", "Granola Bar", "-f", " , "}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfg, "", append(tt.args, "-o", t.TempDir())...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	cfg, _ := testConfig(t)
	dir := t.TempDir()

	if _, err := run(t, cfg, "", "batch", "--all", "--format", "both", "-o", dir); err != nil {
		t.Fatalf("batch: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "NutritionLabels_mixed_*.zip"))
	if len(matches) != 1 {
		t.Fatalf("archives = %v, want one mixed archive", matches)
	}
	zr, err := zip.OpenReader(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if len(names) != 4 {
		t.Errorf("archive entries = %v, want 4", names)
	}
}

func TestBatchCommandErrors(t *testing.T) {
	cfg, _ := testConfig(t)
	if _, err := run(t, cfg, "", "batch", "--all", "--format", "tiff"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := run(t, cfg, "", "batch", "--all", "Granola Bar"); err == nil {
		t.Error("--all with product names should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	cfg, dir := testConfig(t)

	out, err := run(t, cfg, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	// Loading the catalog stores a snapshot.
	if _, err := run(t, cfg, "", "products", "--json"); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) == 0 {
		t.Fatal("expected a snapshot after a successful fetch")
	}

	if _, err := run(t, cfg, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still holds %d entries", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	cfg, _ := testConfig(t)
	out, err := run(t, cfg, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "nutrilabel") {
		t.Error("bash completion should mention the program name")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"pdf,png", "pdf|png", false},
		{" PDF , svg ", "pdf|svg", false},
		{"json,json", "json", false},
		{"pdf,,png", "pdf|png", false},
		{"", "", true},
		{"pdf,gif", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormats(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormats(%q) error = %v", tt.in, err)
			}
			if strings.Join(got, "|") != tt.want {
				t.Errorf("parseFormats(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}
