package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagwater/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	workDir    string
	vaultDir   string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TAGWATER_VAULT", "")

	env := &cliTestEnv{
		baseDir:    base,
		workDir:    filepath.Join(base, "work"),
		vaultDir:   filepath.Join(base, "vault"),
		configPath: filepath.Join(base, "config.toml"),
	}
	if err := os.MkdirAll(env.workDir, 0o755); err != nil {
		t.Fatalf("mkdir workdir: %v", err)
	}
	content := fmt.Sprintf("[paths]\nvault_dir = %q\nlog_dir = %q\n\n[catalog]\ndefault_category = \"general\"\n",
		env.vaultDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.vaultDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestTagCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"tag", "add", "sunset", "sunrise"}, env.configPath)
	if err != nil {
		t.Fatalf("tag add: %v", err)
	}
	requireContains(t, out, "Added tag sunset")
	requireContains(t, out, "Added tag sunrise")

	_, stderr, err := runCLI(t, []string{"tag", "add", "sunset"}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	requireContains(t, stderr, "Tag sunset already exists")

	if _, _, err := runCLI(t, []string{"tag", "category", "add", "people", "-d", "who"}, env.configPath); err != nil {
		t.Fatalf("tag category add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"tag", "add", "alice", "--category", "people"}, env.configPath); err != nil {
		t.Fatalf("tag add with category: %v", err)
	}
	if _, _, err := runCLI(t, []string{"tag", "add", "bob", "--category", "nobody"}, env.configPath); err == nil {
		t.Fatal("expected unknown category to fail")
	}

	out, _, err = runCLI(t, []string{"tag", "find", "sun"}, env.configPath)
	if err != nil {
		t.Fatalf("tag find: %v", err)
	}
	requireContains(t, out, "sunrise")
	requireContains(t, out, "General")
	if strings.Contains(out, "alice") {
		t.Fatalf("unexpected match in %q", out)
	}

	out, _, err = runCLI(t, []string{"tag", "find", "--category", "people"}, env.configPath)
	if err != nil {
		t.Fatalf("tag find --category: %v", err)
	}
	requireContains(t, out, "alice")
	if strings.Contains(out, "sunset") {
		t.Fatalf("category filter ignored: %q", out)
	}

	out, _, err = runCLI(t, []string{"tag", "category", "find", "peo"}, env.configPath)
	if err != nil {
		t.Fatalf("tag category find: %v", err)
	}
	requireContains(t, out, "People")
}

func TestRunAndCheckCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"tag", "add", "a", "b"}, env.configPath); err != nil {
		t.Fatalf("tag add: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(env.workDir, "x.png"), 8)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "y.png"), 8)
	testsupport.WriteScript(t, env.workDir, "ok.tw", "{ @autotag \"x.png\" a \"y.png\" b }\n")

	out, _, err := runCLI(t, []string{"check", "ok.tw", "--workdir", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "x.png")
	requireContains(t, out, "2 files, 1 groups, 2 distinct tags")

	out, _, err = runCLI(t, []string{"check", "ok.tw", "-w", env.workDir, "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("check json: %v", err)
	}
	var doc struct {
		Files []struct {
			Path string   `json:"path"`
			Tags []string `json:"tags"`
		} `json:"files"`
		Groups []struct {
			Tags []string `json:"tags"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(doc.Files) != 2 || doc.Files[1].Path != "y.png" || strings.Join(doc.Groups[0].Tags, ",") != "a,b" {
		t.Fatalf("unexpected document %+v", doc)
	}

	out, _, err = runCLI(t, []string{"check", "ok.tw", "-w", env.workDir, "--format", "yaml"}, env.configPath)
	if err != nil {
		t.Fatalf("check yaml: %v", err)
	}
	requireContains(t, out, "path: x.png")
	requireContains(t, out, "autotag: true")

	if _, _, err := runCLI(t, []string{"check", "ok.tw", "-w", env.workDir, "--format", "xml"}, env.configPath); err == nil {
		t.Fatal("expected unsupported format to fail")
	}

	out, _, err = runCLI(t, []string{"run", "ok.tw", "--workdir", env.workDir}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Committed 2 files and 1 groups")
	for _, name := range []string{"1.png", "2.png"} {
		if _, err := os.Stat(filepath.Join(env.vaultDir, "files", name)); err != nil {
			t.Fatalf("expected stored file %s: %v", name, err)
		}
	}

	// Both entries now belong to a group.
	if _, _, err := runCLI(t, []string{"group", "new", "1", "2"}, env.configPath); err == nil {
		t.Fatal("expected regrouping to fail")
	}
}

func TestRunReportsValidationFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.workDir, "bad.tw", "\"missing.png\" ghost\n")

	out, stderr, err := runCLI(t, []string{"run", "bad.tw", "-w", env.workDir}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if out != "" {
		t.Fatalf("unexpected stdout %q", out)
	}
	requireContains(t, stderr, "Unknown tags:\n\tghost\n")
	requireContains(t, stderr, "Could not read files:\n\t'missing.png'\n")

	_, stderr, err = runCLI(t, []string{"run", "absent.tw", "-w", env.workDir}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	requireContains(t, stderr, `File "absent.tw" not found`)
}

func TestGroupNewCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.txt"), 4)
	testsupport.WriteFile(t, filepath.Join(env.workDir, "b.txt"), 4)
	testsupport.WriteScript(t, env.workDir, "files.tw", "\"a.txt\"\n\"b.txt\"\n")
	if _, _, err := runCLI(t, []string{"run", "files.tw", "-w", env.workDir}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"group", "new", "1", "2", "--cover", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("group new: %v", err)
	}
	requireContains(t, out, "with 2 members (cover 2)")

	if _, _, err := runCLI(t, []string{"group", "new", "abc"}, env.configPath); err == nil {
		t.Fatal("expected invalid id to fail")
	}
}

func TestRunSuggestsCloseTags(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"tag", "add", "landscape", "portrait"}, env.configPath); err != nil {
		t.Fatalf("tag add: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(env.workDir, "a.jpg"), 4)
	testsupport.WriteScript(t, env.workDir, "typo.tw", "\"a.jpg\" lndscape\n")

	_, stderr, err := runCLI(t, []string{"check", "typo.tw", "-w", env.workDir}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	requireContains(t, stderr, "Unknown tags:\n\tlndscape\n")
	requireContains(t, stderr, "lndscape: did you mean landscape?")
}
