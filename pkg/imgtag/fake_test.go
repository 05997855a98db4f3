package imgtag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tstromberg/imgtagman/pkg/usertags"
	"github.com/tstromberg/imgtagman/pkg/vision"
)

// memStore keeps encoded plists in memory, the way an xattr would.
type memStore struct {
	mu      sync.Mutex
	attrs   map[string][]byte
	readErr map[string]error
	writes  int
	clears  int
}

func newMemStore() *memStore {
	return &memStore{attrs: map[string][]byte{}, readErr: map[string]error{}}
}

func (m *memStore) set(path string, tags ...string) {
	bs, err := usertags.Encode(tags)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs[path] = bs
}

func (m *memStore) Read(_ context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readErr[path]; err != nil {
		return nil, err
	}
	bs, ok := m.attrs[path]
	if !ok {
		return []string{}, nil
	}
	tags, err := usertags.Decode(bs)
	if errors.Is(err, usertags.ErrNoTags) {
		return []string{}, nil
	}
	return tags, err
}

func (m *memStore) Write(_ context.Context, path string, tags []string) error {
	bs, err := usertags.Encode(tags)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.attrs[path] = bs
	return nil
}

func (m *memStore) Clear(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	delete(m.attrs, path)
	return nil
}

func (m *memStore) counts() (writes, clears int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes, m.clears
}

// fakeTagger answers with fixed tags per path.
type fakeTagger struct {
	tags  map[string][]string
	errs  map[string]error
	block bool
	calls atomic.Int32
}

func (f *fakeTagger) Tag(ctx context.Context, img vision.Image, _ vision.Detail) ([]string, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[img.Path]; err != nil {
		return nil, err
	}
	return f.tags[img.Path], nil
}

func testRunner(s usertags.Store, v vision.Tagger) *Runner {
	c := Default()
	r := NewRunner(&c, s, v)
	r.readFile = func(string) ([]byte, error) { return []byte("img"), nil }
	return r
}

func images(paths ...string) []ImageFile {
	files := make([]ImageFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, ImageFile{Path: p, RelPath: p, Ext: ".jpg", MIMEType: "image/jpeg"})
	}
	return files
}
