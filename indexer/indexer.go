// indexer.go - create-subsystem orchestrator
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package indexer

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vfxetc/uindex/chash"
	"github.com/vfxetc/uindex/entry"
	"github.com/vfxetc/uindex/hashcache"
	"github.com/vfxetc/uindex/index"
	"github.com/vfxetc/uindex/ordermap"
	"github.com/vfxetc/uindex/walk"
)

// Stats accumulates the aggregate counts emitted in the #scan-end
// footer.
type Stats struct {
	AddedCount int64
	AddedBytes int64
	TotalCount int64
	TotalBytes int64
	ErrorCount int64
}

// Indexer drives one create() run: walker -> filter -> ordered
// hasher pool -> writer.
type Indexer struct {
	opt   Options
	cfg   *chash.Config
	cache *hashcache.Cache
	stats Stats
}

// New validates opt and builds an Indexer ready to Run.
func New(opt Options) (*Indexer, error) {
	opt.normalize()

	cfg, err := chash.NewConfig(opt.ChecksumAlgo, opt.Head, opt.Tail)
	if err != nil {
		return nil, err
	}

	return &Indexer{
		opt:   opt,
		cfg:   cfg,
		cache: hashcache.New(),
	}, nil
}

// hashOutcome is what a single hashing worker produces for one item:
// either a ready row, a scan-error record, or neither (skipped,
// already unchanged).
type hashOutcome struct {
	row     *entry.Entry
	scanErr *index.ScanError
	skipped bool
}

// Run performs the walk, hashes qualifying items across opt.Threads
// workers, and writes header/rows/errors/footer to out in order.
func (ix *Indexer) Run(out io.Writer) (Stats, error) {
	excludes, err := newExcludeSet(ix.opt.Excludes, ix.opt.IncludeDotfiles)
	if err != nil {
		return ix.stats, err
	}

	uuid := newUUID()
	digits := timeDigits(float64(time.Now().Unix()))

	header := &entry.Header{
		PathToIndex:  ix.opt.Root,
		Root:         ix.opt.IndexRoot,
		Start:        ix.opt.Start,
		StartedAt:    time.Now().UTC().Format(time.RFC3339),
		UUID:         uuid,
		Excludes:     ix.opt.Excludes,
		ChecksumAlgo: ix.opt.ChecksumAlgo,
		Head:         ix.opt.Head.Raw(),
		Tail:         ix.opt.Tail.Raw(),
		Columns:      entry.DefaultColumns,
	}

	iw := index.NewWriter(out)
	defer iw.Close()

	if err := iw.WriteHeader(header); err != nil {
		return ix.stats, err
	}

	items := make(chan *walk.Item, ix.opt.Threads)
	walkErrCh := make(chan error, 16)

	go func() {
		defer close(items)

		walkOpt := walk.Options{
			Filter: func(it *walk.Item) bool {
				return excludes.matches(it.Name, ix.opt.IndexRoot, it.Path)
			},
			OnError: func(err error) {
				select {
				case walkErrCh <- err:
				default:
				}
				ix.log("walk error: %s", err)
			},
		}

		err := walk.Walk(ix.opt.Root, ix.opt.Start, walkOpt, func(dir string, batch []*walk.Item) error {
			for _, it := range batch {
				items <- it
			}
			return nil
		})
		if err != nil {
			select {
			case walkErrCh <- err:
			default:
			}
		}
		close(walkErrCh)
	}()

	results := ordermap.Map(items, ix.opt.Threads, ix.opt.Sorted, ix.hashOne)

	var runErr error
	for r := range results {
		if r.Err != nil {
			runErr = r.Err
			ix.log("hasher error at job %d: %s", r.Index, r.Err)
			continue
		}
		o := r.Value
		if o.skipped {
			continue
		}
		if o.scanErr != nil {
			ix.stats.ErrorCount++
			if err := iw.WriteScanError(o.scanErr); err != nil {
				runErr = err
			}
			continue
		}
		if o.row != nil {
			ix.stats.AddedCount++
			ix.stats.AddedBytes += o.row.Size
			if err := iw.WriteRow(o.row, digits); err != nil {
				runErr = err
			}
		}
	}

	for werr := range walkErrCh {
		runErr = werr
	}

	footer := &index.ScanEnd{
		AddedCount: ix.stats.AddedCount,
		AddedBytes: ix.stats.AddedBytes,
		TotalCount: ix.stats.TotalCount,
		TotalBytes: ix.stats.TotalBytes,
		ErrorCount: ix.stats.ErrorCount,
		EndedAt:    time.Now().UTC().Format(time.RFC3339),
		UUID:       uuid,
	}
	if err := iw.WriteFooter(footer); err != nil && runErr == nil {
		runErr = err
	}

	return ix.stats, runErr
}

// hashOne is the per-item worker function handed to the ordered
// parallel map: it filters against the existing-entry map, consults
// the hash cache, and hashes items that survive both.
func (ix *Indexer) hashOne(it *walk.Item) (hashOutcome, error) {
	if it.Kind == walk.Special {
		return hashOutcome{skipped: true}, nil
	}

	ix.stats.TotalCount++
	ix.stats.TotalBytes += it.Info.Size()

	rel, err := filepath.Rel(ix.opt.IndexRoot, it.Path)
	if err != nil {
		rel = it.Path
	}
	rel = filepath.ToSlash(rel)

	if ix.opt.Existing != nil {
		if prior, ok := ix.opt.Existing.Load(rel); ok {
			if entry.Unchanged(prior, it.Info.Size(), toFloat(it.Info.Mtim)) {
				return hashOutcome{skipped: true}, nil
			}
		}
	}

	algoKey := ix.cfg.AlgoKey()

	var digest string
	var cacheHit bool
	ctime := toFloat(it.Info.Ctim)

	if it.Kind != walk.Symlink {
		digest, cacheHit = ix.cache.Lookup(it.Info.Dev, it.Info.Ino, algoKey, ctime)
	}

	if !cacheHit {
		var err error
		switch it.Kind {
		case walk.Symlink:
			target, rerr := readlink(it.Path)
			if rerr != nil {
				return hashOutcome{}, rerr
			}
			digest = ix.cfg.HashSymlink(target)
		default:
			digest, err = ix.cfg.HashFile(it.Path, it.Info.Size())
		}

		if err != nil {
			if isUnreadable(err) {
				ix.log("unreadable: %s", it.Path)
				return hashOutcome{scanErr: &index.ScanError{Path: rel, Error: err.Error()}}, nil
			}
			return hashOutcome{}, fmt.Errorf("hash %s: %w", it.Path, err)
		}

		if it.Kind != walk.Symlink {
			ix.cache.Store(it.Info.Dev, it.Info.Ino, algoKey, ctime, digest)
		}
	}

	typeCode := entry.Regular
	if it.Kind == walk.Symlink {
		typeCode = entry.Symlink
	}

	mode := it.Info.Mode()
	perms := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		perms |= 04000
	}
	if mode&fs.ModeSetgid != 0 {
		perms |= 02000
	}
	if mode&fs.ModeSticky != 0 {
		perms |= 01000
	}

	row := &entry.Entry{
		Path:        rel,
		RawChecksum: algoKey + ":" + digest,
		Perms:       perms,
		TypeCode:    typeCode,
		Size:        it.Info.Size(),
		Uid:         it.Info.Uid,
		Gid:         it.Info.Gid,
		Mtime:       toFloat(it.Info.Mtim),
		Ctime:       ctime,
		Inode:       it.Info.Ino,
		Meta:        nil,
	}
	return hashOutcome{row: row}, nil
}

func (ix *Indexer) log(format string, args ...any) {
	if ix.opt.Log != nil {
		ix.opt.Log.Info(format, args...)
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%s added (%s), %s total (%s), %d errors",
		humanize.Comma(s.AddedCount), humanize.IBytes(uint64(s.AddedBytes)),
		humanize.Comma(s.TotalCount), humanize.IBytes(uint64(s.TotalBytes)),
		s.ErrorCount)
}
