package clips

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestPutAndList(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, ts := range []int64{1000, 3000, 2000} {
		if _, err = fs.Put("kitchen", ts, "webm", strings.NewReader("blob")); err != nil {
			t.Fatalf("Put(ts=%d): %v", ts, err)
		}
	}
	if _, err = fs.Put("garage", 5000, "webm", strings.NewReader("other")); err != nil {
		t.Fatalf("Put(garage): %v", err)
	}

	list, err := fs.List("kitchen")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List returned %d clips, want 3", len(list))
	}
	for i, want := range []int64{3000, 2000, 1000} {
		if list[i].Timestamp != want {
			t.Errorf("clip %d timestamp = %d, want %d (newest first)", i, list[i].Timestamp, want)
		}
	}
	for _, c := range list {
		if !strings.HasPrefix(c.URL, "/clips/") || c.File == "" {
			t.Errorf("clip descriptor incomplete: %+v", c)
		}
	}

	empty, err := fs.List("no-such-room")
	if err != nil || len(empty) != 0 {
		t.Errorf("List(no-such-room) = %v, %v; want empty", empty, err)
	}
}

func TestPutSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	clip, err := fs.Put("../evil room", 1000, "we/bm", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.ContainsAny(clip.File, `/\ `) || strings.Contains(clip.File, "..") {
		t.Errorf("stored name not sanitized: %q", clip.File)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != clip.File {
		t.Errorf("clip landed outside the store dir: %v", entries)
	}
}

func TestPutEmptyRoomRejected(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	if _, err := fs.Put("", 1000, "webm", strings.NewReader("x")); !errors.Is(err, ErrBadName) {
		t.Errorf("Put with empty room = %v, want ErrBadName", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	clip, err := fs.Put("kitchen", 1000, "webm", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err = fs.Path(clip.File); err != nil {
		t.Errorf("Path(%q) = %v, want ok", clip.File, err)
	}
	for _, bad := range []string{"", "../secret", "a/b.webm", ".hidden", "missing.webm"} {
		if _, err = fs.Path(bad); err == nil {
			t.Errorf("Path(%q) should fail", bad)
		}
	}
}
