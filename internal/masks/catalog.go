package masks

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"kartvid/internal/fileutil"
	"kartvid/internal/img"
	"kartvid/internal/logging"
)

var (
	// ErrTooManyMasks is returned when a directory holds more masks than allowed.
	ErrTooManyMasks = errors.New("too many masks")
	// ErrNoMasks is returned when a directory holds no usable masks.
	ErrNoMasks = errors.New("no masks found")
)

// Options controls catalog loading.
type Options struct {
	// Extensions lists accepted file extensions, lower case with a leading dot.
	Extensions []string
	// MaxMasks bounds the catalog size. Zero means unlimited.
	MaxMasks int
	Logger   *slog.Logger
}

// Catalog is the ordered, read-only set of masks shared by every frame
// classifier. Position masks come first so that the player count they set is
// known before other categories are resolved. Readers never block: a load
// publishes its result once and it is not modified afterwards.
type Catalog struct {
	mu     sync.Mutex // serializes Load
	loaded atomic.Pointer[loadedSet]
}

type loadedSet struct {
	dir   string
	masks []Mask
}

func (c *Catalog) current() *loadedSet {
	if set := c.loaded.Load(); set != nil {
		return set
	}
	return &loadedSet{}
}

// Load builds a catalog from dir.
func Load(dir string, opts Options) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Load(dir, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// Load populates the catalog from dir. Calling Load on a populated catalog
// does nothing. Any candidate file that fails to decode fails the whole load.
func (c *Catalog) Load(dir string, opts Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded.Load() != nil {
		return nil
	}

	logger := logging.NewComponentLogger(opts.Logger, "masks")
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".png"}
	}

	names, err := fileutil.ListSorted(dir, func(name string) bool {
		if _, ok := categoryOf(name); !ok {
			return false
		}
		return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
	})
	if err != nil {
		return fmt.Errorf("list masks: %w", err)
	}

	loaded := make([]Mask, 0, len(names))
	for _, name := range names {
		m, err := ParseName(name)
		if err != nil {
			logging.WarnWithContext(logger, "skipping mask with unparsable name", logging.EventMaskNameUnparsed,
				logging.String(logging.FieldMask, name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rename the file to match the mask naming scheme"),
				logging.String(logging.FieldImpact, "mask not used for classification"),
			)
			continue
		}
		if opts.MaxMasks > 0 && len(loaded) == opts.MaxMasks {
			return fmt.Errorf("%w: more than %d in %s", ErrTooManyMasks, opts.MaxMasks, dir)
		}

		im, err := img.Read(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("load mask: %w", err)
		}
		if im.Empty() {
			return fmt.Errorf("load mask %s: %w", name, img.ErrNoComparablePixels)
		}
		m.Image = im
		loaded = append(loaded, m)
		logger.Debug("mask loaded",
			logging.String(logging.FieldMask, name),
			logging.String("category", m.Category.String()),
			logging.Any("bounds", [4]int{im.MinX, im.MinY, im.MaxX, im.MaxY}),
		)
	}
	if len(loaded) == 0 {
		return fmt.Errorf("%w in %s", ErrNoMasks, dir)
	}

	// Names are already in lexical order, so a stable sort keeps that as the
	// tie-break inside each group.
	slices.SortStableFunc(loaded, func(a, b Mask) int {
		switch {
		case a.Category == CategoryPos && b.Category != CategoryPos:
			return -1
		case a.Category != CategoryPos && b.Category == CategoryPos:
			return 1
		default:
			return 0
		}
	})

	c.loaded.Store(&loadedSet{dir: dir, masks: loaded})
	logger.Info("mask catalog loaded",
		logging.String("dir", dir),
		logging.Int("masks", len(loaded)),
	)
	return nil
}

// Masks returns the catalog in evaluation order. The slice must not be modified.
func (c *Catalog) Masks() []Mask {
	return c.current().masks
}

// Len returns the number of loaded masks.
func (c *Catalog) Len() int {
	return len(c.Masks())
}

// Dir returns the directory the catalog was loaded from.
func (c *Catalog) Dir() string {
	return c.current().dir
}

// Counts returns the number of masks per category.
func (c *Catalog) Counts() map[Category]int {
	counts := make(map[Category]int)
	for _, m := range c.Masks() {
		counts[m.Category]++
	}
	return counts
}
