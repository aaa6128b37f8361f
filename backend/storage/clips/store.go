package clips

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrBadName = errors.New("invalid clip name")
	ErrCreate  = errors.New("unable to store clip")
)

// Clip describes one stored recording.
type Clip struct {
	File      string `json:"file"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// FileStore keeps recorded clips as flat files under one directory, named
// <room>_<unix-millis>.<ext>. It backs the clip boundary API: write a
// blob, list a room's clips newest-first, read a clip back by name.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Join(ErrCreate, err)
	}
	return &FileStore{dir: dir}, nil
}

// sanitize keeps room keys and extensions filesystem- and URL-safe.
// Underscore is excluded so the name stays parseable on the way back.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

// Put stores one clip blob and returns its descriptor.
func (fs *FileStore) Put(room string, ts int64, ext string, r io.Reader) (Clip, error) {
	if room == "" {
		return Clip{}, ErrBadName
	}
	name := fmt.Sprintf("%s_%d.%s", sanitize(room), ts, sanitize(ext))
	f, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return Clip{}, errors.Join(ErrCreate, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err = io.Copy(f, r); err != nil {
		return Clip{}, errors.Join(ErrCreate, err)
	}
	return Clip{File: name, URL: "/clips/" + name, Timestamp: ts}, nil
}

// List returns the room's clips, newest first.
func (fs *FileStore) List(room string) ([]Clip, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, err
	}
	prefix := sanitize(room) + "_"
	out := make([]Clip, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		ts, ok := timestampOf(e.Name())
		if !ok {
			continue
		}
		out = append(out, Clip{File: e.Name(), URL: "/clips/" + e.Name(), Timestamp: ts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// Path resolves a clip name to its on-disk path, rejecting anything that
// could escape the store directory.
func (fs *FileStore) Path(file string) (string, error) {
	if file == "" || file != filepath.Base(file) || strings.HasPrefix(file, ".") {
		return "", ErrBadName
	}
	p := filepath.Join(fs.dir, file)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

func timestampOf(name string) (int64, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return 0, false
	}
	ts, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
