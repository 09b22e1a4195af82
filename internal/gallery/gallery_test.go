package gallery

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/picasso"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Error(err)
		}
	})
	return s
}

func TestSaveGet(t *testing.T) {
	s := open(t)
	a, err := s.Save("stripes", "wrap(x * 8)")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == 0 || a.Hash == "" || a.CreatedAt == 0 {
		t.Errorf("saved entry not filled in: %+v", a)
	}
	b, err := s.Get(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if b.Title != "stripes" || b.Expr != "wrap(x * 8)" || b.Hash != a.Hash {
		t.Errorf("got %+v, want %+v", b, a)
	}
	// Equivalent source is the same entry.
	c, err := s.Save("other title", "wrap((x)*8)")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != a.ID {
		t.Errorf("equivalent expression saved as new entry %d, want %d", c.ID, a.ID)
	}
}

func TestSaveConcurrent(t *testing.T) {
	s := open(t)
	const n = 16
	ids := make([]int64, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			ent, err := s.Save("spiral", "sin(x * y * 10)")
			if err != nil {
				return err
			}
			ids[i] = ent.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, id := range ids {
		if id != ids[0] {
			t.Errorf("save %d got entry %d, want %d", i, id, ids[0])
		}
	}
	l, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 1 {
		t.Errorf("want 1 entry, have %d", len(l))
	}
}

func TestUniqueLiveHash(t *testing.T) {
	s := open(t)
	a, err := s.Save("a", "x")
	if err != nil {
		t.Fatal(err)
	}
	dup := Entry{Title: "dup", Expr: "(x)", Hash: a.Hash, CreatedAt: a.CreatedAt}
	if err := s.db.Create(&dup).Error; err == nil {
		t.Fatalf("inserted second live entry %d with hash %s", dup.ID, a.Hash)
	}
	// Deleted entries do not count, however many there are.
	for range 3 {
		if err := s.Delete(a.ID); err != nil {
			t.Fatal(err)
		}
		if a, err = s.Save("a", "x"); err != nil {
			t.Fatal(err)
		}
	}
	var n int64
	if err := s.db.Unscoped().Model(&Entry{}).Where("`hash` = ?", a.Hash).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("want 4 rows for the hash, have %d", n)
	}
}

func TestSaveInvalid(t *testing.T) {
	s := open(t)
	_, err := s.Save("broken", "sin(x")
	var berr *picasso.BracketError
	if !errors.As(err, &berr) {
		t.Errorf("want BracketError, got %v", err)
	}
	_, err = s.Save("image", `imageWrap("a.png", x, y)`)
	if !errors.Is(err, picasso.ErrNoImages) {
		t.Errorf("want ErrNoImages, got %v", err)
	}
	s.Images = picasso.ImageLoaderFunc(func(name string) (picasso.Image, error) {
		return picasso.NewRaster(image.NewNRGBA(image.Rect(0, 0, 1, 1))), nil
	})
	if _, err := s.Save("image", `imageWrap("a.png", x, y)`); err != nil {
		t.Errorf("saving with images: %v", err)
	}
	l, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 1 {
		t.Errorf("want only the valid entry, have %d", len(l))
	}
}

func TestListDelete(t *testing.T) {
	s := open(t)
	srcs := []string{"x", "y", "x + y", "perlinBW(x, y)"}
	ids := make([]int64, len(srcs))
	for i, src := range srcs {
		e, err := s.Save(src, src)
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = e.ID
	}
	l, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 2 || l[0].ID != ids[3] || l[1].ID != ids[2] {
		t.Errorf("wrong list: %+v", l)
	}

	if err := s.Delete(ids[2]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ids[2]); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted entry: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(ids[2]); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting twice: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting missing: want ErrNotFound, got %v", err)
	}
	l, err = s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 3 {
		t.Fatalf("want 3 entries after delete, have %d", len(l))
	}
	for _, e := range l {
		if e.ID == ids[2] {
			t.Errorf("deleted entry listed")
		}
	}

	// A deleted expression can be saved again.
	e, err := s.Save("again", "x + y")
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == ids[2] {
		t.Errorf("resaved expression reused deleted entry")
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	e, err := s.Save("kept", "!x")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	f, err := s.Get(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if f.Expr != "!x" {
		t.Errorf("reopened entry has %q", f.Expr)
	}
}
