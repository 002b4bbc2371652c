package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagwater/internal/catalog"
	"tagwater/internal/config"
	"tagwater/internal/ingest"
	"tagwater/internal/testsupport"
	"tagwater/internal/vault"
)

type fixture struct {
	cfg     *config.Config
	store   *catalog.Store
	vault   *vault.Vault
	workDir string
}

func newFixture(t *testing.T, tags ...string) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	v, err := vault.Open(cfg)
	if err != nil {
		t.Fatalf("vault.Open: %v", err)
	}
	testsupport.MustRegisterTags(t, store, tags...)
	workDir := filepath.Join(testsupport.BaseDir(cfg), "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir workdir: %v", err)
	}
	return &fixture{cfg: cfg, store: store, vault: v, workDir: workDir}
}

func (f *fixture) files(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(f.workDir, name), 16)
	}
}

// failingVault refuses to store the named source files.
type failingVault struct {
	*vault.Vault
	fail map[string]bool
}

func (v failingVault) Store(src string, entryID int64, ext string) error {
	if v.fail[filepath.Base(src)] {
		return errors.New("simulated I/O failure")
	}
	return v.Vault.Store(src, entryID, ext)
}

func TestRunCommitsFilesGroupsAndTags(t *testing.T) {
	f := newFixture(t, "beach", "sunset", "trip")
	f.files(t, "x.png", "y.png", "z.jpg")
	script := testsupport.WriteScript(t, f.workDir, "import.tw", `
$common = trip
{ "x.png" beach "y.png" sunset } $common
"z.jpg" beach -beach sunset
`)

	p := ingest.New(f.store, f.vault, nil)
	ctx := context.Background()
	res, err := p.Run(ctx, f.workDir, filepath.Base(script))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK || len(res.Messages) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.RunID == "" {
		t.Fatal("expected run id")
	}

	files := res.Commit.Files
	if len(files) != 3 || files[0].Path != "x.png" || files[2].Path != "z.jpg" {
		t.Fatalf("unexpected committed files %+v", files)
	}
	for _, cf := range files {
		entry, err := f.store.Entry(ctx, cf.ID)
		if err != nil || entry == nil {
			t.Fatalf("Entry(%d): %v %v", cf.ID, entry, err)
		}
		stored := f.vault.PathFor(cf.ID, entry.Ext)
		if _, err := os.Stat(stored); err != nil {
			t.Fatalf("expected stored bytes for %s: %v", cf.Path, err)
		}
	}

	zTags, err := f.store.EntryTags(ctx, files[2].ID)
	if err != nil {
		t.Fatalf("EntryTags: %v", err)
	}
	if strings.Join(zTags, ",") != "sunset" {
		t.Fatalf("z.jpg tags = %v, want [sunset]", zTags)
	}

	if len(res.Commit.Groups) != 1 || res.Commit.Groups[0].Err != nil {
		t.Fatalf("unexpected groups %+v", res.Commit.Groups)
	}
	groupID := res.Commit.Groups[0].ID
	group, err := f.store.Entry(ctx, groupID)
	if err != nil {
		t.Fatalf("Entry(group): %v", err)
	}
	if group.Type != catalog.EntryGroup || group.Cover != files[0].ID {
		t.Fatalf("group cover = %d, want first member %d", group.Cover, files[0].ID)
	}
	members, err := f.store.GroupMembers(ctx, groupID)
	if err != nil {
		t.Fatalf("GroupMembers: %v", err)
	}
	if len(members) != 2 || members[0] != files[0].ID || members[1] != files[1].ID {
		t.Fatalf("unexpected members %v", members)
	}
	groupTags, err := f.store.EntryTags(ctx, groupID)
	if err != nil {
		t.Fatalf("EntryTags(group): %v", err)
	}
	if strings.Join(groupTags, ",") != "trip" {
		t.Fatalf("group tags = %v, want [trip]", groupTags)
	}
}

func TestRunValidationIsAllOrNothing(t *testing.T) {
	f := newFixture(t, "known")
	f.files(t, "present.txt")
	testsupport.WriteScript(t, f.workDir, "bad.tw", `
"present.txt" known ghost
"absent.txt" phantom
`)

	p := ingest.New(f.store, f.vault, nil)
	ctx := context.Background()
	res, err := p.Run(ctx, f.workDir, "bad.tw")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK {
		t.Fatal("expected failure")
	}
	want := []string{"Unknown tags:", "\tghost, phantom", "Could not read files:", "\t'absent.txt'"}
	if strings.Join(res.Messages, "\n") != strings.Join(want, "\n") {
		t.Fatalf("messages = %q, want %q", res.Messages, want)
	}

	count, err := f.store.CountEntries(ctx, catalog.EntryFile)
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no entries after failed validation, got %d", count)
	}
}

func TestRunCopyFailureIsSoft(t *testing.T) {
	f := newFixture(t, "t")
	f.files(t, "one.txt", "two.txt", "three.txt")
	testsupport.WriteScript(t, f.workDir, "s.tw", `"one.txt" t
"two.txt" t
"three.txt" t
`)

	v := failingVault{Vault: f.vault, fail: map[string]bool{"two.txt": true}}
	p := ingest.New(f.store, v, nil)
	ctx := context.Background()
	res, err := p.Run(ctx, f.workDir, "s.tw")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(res.Messages) != 1 || res.Messages[0] != "Error copying 'two.txt': simulated I/O failure" {
		t.Fatalf("unexpected messages %q", res.Messages)
	}
	if len(res.Commit.Files) != 3 {
		t.Fatalf("expected 3 committed files, got %d", len(res.Commit.Files))
	}
	for _, cf := range res.Commit.Files {
		tags, err := f.store.EntryTags(ctx, cf.ID)
		if err != nil {
			t.Fatalf("EntryTags: %v", err)
		}
		if len(tags) != 1 || tags[0] != "t" {
			t.Fatalf("%s tags = %v", cf.Path, tags)
		}
	}
	if _, err := os.Stat(f.vault.PathFor(res.Commit.Files[1].ID, "txt")); !os.IsNotExist(err) {
		t.Fatalf("failed copy should leave no stored bytes, stat err=%v", err)
	}
}

func TestRunEmptyGroupFailsRun(t *testing.T) {
	f := newFixture(t, "t")
	f.files(t, "a.txt")
	testsupport.WriteScript(t, f.workDir, "s.tw", "\"a.txt\" t\n{ } t\n")

	p := ingest.New(f.store, f.vault, nil)
	res, err := p.Run(context.Background(), f.workDir, "s.tw")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK {
		t.Fatal("expected failure for empty group")
	}
	if len(res.Messages) != 1 || !strings.Contains(res.Messages[0], "cannot create empty group") {
		t.Fatalf("unexpected messages %q", res.Messages)
	}
	// The file before the group is kept.
	if len(res.Commit.Files) != 1 {
		t.Fatalf("expected the file to be committed, got %+v", res.Commit.Files)
	}
}

func TestRunGroupErrorOmitsCopyFailureLines(t *testing.T) {
	f := newFixture(t, "t")
	f.files(t, "one.txt", "two.txt")
	testsupport.WriteScript(t, f.workDir, "s.tw", "\"one.txt\" t\n\"two.txt\" t\n{ } t\n")

	v := failingVault{Vault: f.vault, fail: map[string]bool{"two.txt": true}}
	p := ingest.New(f.store, v, nil)
	res, err := p.Run(context.Background(), f.workDir, "s.tw")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK {
		t.Fatal("expected failure for empty group")
	}
	if len(res.Messages) != 1 || !strings.Contains(res.Messages[0], "cannot create empty group") {
		t.Fatalf("unexpected messages %q", res.Messages)
	}
	if len(res.Commit.FailedCopies) != 1 || res.Commit.FailedCopies[0].Path != "two.txt" {
		t.Fatalf("unexpected failed copies %+v", res.Commit.FailedCopies)
	}
}

func TestRunReportsScriptErrors(t *testing.T) {
	cases := []struct {
		name   string
		script string
		path   string
		want   string
	}{
		{"missing script", "", "nope.tw", `File "nope.tw" not found`},
		{"repeated file", "\"a.txt\"\n\"a.txt\"\n", "s.tw", "Line 2: Repeated file a.txt"},
		{"undefined variable", "\n\n\"a.txt\" $nope\n", "s.tw", "Line 3: Undefined variable $nope"},
		{"unterminated string", "\"a.txt", "s.tw", "Line 1: unterminated string starting \"a.txt\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.script != "" {
				testsupport.WriteScript(t, f.workDir, tc.path, tc.script)
			}
			p := ingest.New(f.store, f.vault, nil)
			res, err := p.Run(context.Background(), f.workDir, tc.path)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.OK || len(res.Messages) != 1 || res.Messages[0] != tc.want {
				t.Fatalf("result = %+v, want failure %q", res, tc.want)
			}
		})
	}
}

func TestRunFailsWhenVaultLocked(t *testing.T) {
	f := newFixture(t)
	holder, err := vault.Open(f.cfg)
	if err != nil {
		t.Fatalf("vault.Open: %v", err)
	}
	ctx := context.Background()
	if err := holder.Lock(ctx); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer holder.Unlock()

	p := ingest.New(f.store, f.vault, nil)
	if _, err := p.Run(ctx, f.workDir, "s.tw"); !errors.Is(err, vault.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestCheckDoesNotMutate(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.files(t, "x.txt")
	testsupport.WriteScript(t, f.workDir, "s.tw", "{ @autotag \"x.txt\" a } b\n")

	p := ingest.New(f.store, f.vault, nil)
	ctx := context.Background()
	doc, res, err := p.Check(ctx, f.workDir, "s.tw")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.OK || doc == nil {
		t.Fatalf("unexpected check result %+v", res)
	}
	if got := strings.Join(doc.Groups[0].Tags.Sorted(), ","); got != "a,b" {
		t.Fatalf("group tags = %s, want a,b", got)
	}
	count, err := f.store.CountEntries(ctx, catalog.EntryFile)
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if count != 0 {
		t.Fatalf("check created %d entries", count)
	}
}
