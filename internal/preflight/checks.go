package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"kartvid/internal/config"
	"kartvid/internal/deps"
	"kartvid/internal/logging"
	"kartvid/internal/masks"
	"kartvid/internal/racedb"
)

// lowSpaceBytes is the free space below which a writable directory warns.
const lowSpaceBytes = 64 * 1024 * 1024

// CheckDirectoryAccess verifies that the directory exists, is readable and
// writable, and reports its free space.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	free, err := freeBytes(path)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	if free < lowSpaceBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: only %s free)", path, humanize.Bytes(free))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok, %s free)", path, humanize.Bytes(free))}
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckMaskCatalog loads the configured mask directory and summarizes it.
func CheckMaskCatalog(cfg *config.Config) Result {
	const name = "Mask catalog"
	dir := cfg.Paths.MaskDir
	if r := CheckReadableDirectory(name, dir); !r.Passed {
		return r
	}
	opts := masks.Options{
		Extensions: cfg.Detection.MaskExtensions,
		MaxMasks:   cfg.Detection.MaxMasks,
		Logger:     logging.NewNop(),
	}
	catalog, err := masks.Load(dir, opts)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	counts := catalog.Counts()
	missing := make([]string, 0)
	parts := make([]string, 0, len(counts))
	for _, cat := range []masks.Category{masks.CategoryPos, masks.CategoryChar, masks.CategoryItem, masks.CategoryLakitu, masks.CategoryTrack} {
		if counts[cat] == 0 {
			missing = append(missing, cat.String())
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", counts[cat], cat))
	}
	sort.Strings(missing)
	detail := fmt.Sprintf("%s (%s masks: %s)", dir, humanize.Comma(int64(catalog.Len())), strings.Join(parts, ", "))
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s; no %s masks", detail, strings.Join(missing, "/"))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDatabase opens the run database, creating it when absent.
func CheckDatabase(path string) Result {
	const name = "Run database"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	store, err := racedb.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	detail := fmt.Sprintf("%s (schema ok)", path)
	if info, err := os.Stat(path); err == nil {
		detail = fmt.Sprintf("%s (schema ok, %s)", path, humanize.Bytes(uint64(info.Size())))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, deps.FFmpegRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

// FromStatus converts a dependency status into a Result.
func FromStatus(status deps.Status) Result {
	detail := status.Detail
	if status.Available {
		detail = status.Command
		if status.Version != "" {
			detail = fmt.Sprintf("%s (%s)", status.Command, status.Version)
		}
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   detail,
	}
}

func freeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
