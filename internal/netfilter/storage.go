package netfilter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stefal/pyruse-go/internal/domain"
)

// Record is one persisted ban (SPEC_FULL.md §4.4.2): `{IP, nfSet, timestamp}`
// where timestamp is seconds since the Unix epoch, 0 meaning "no expiry".
// Sub-second precision is discarded on read and on write.
type Record struct {
	IP        string `json:"IP" yaml:"IP"`
	NFSet     string `json:"nfSet" yaml:"nfSet"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

func (r Record) expiry() *time.Time {
	if r.Timestamp == 0 {
		return nil
	}
	t := time.Unix(r.Timestamp, 0).UTC()
	return &t
}

func fromExpiry(ip, set string, until *time.Time) Record {
	var ts int64
	if until != nil {
		ts = until.Unix()
	}
	return Record{IP: ip, NFSet: set, Timestamp: ts}
}

// Storage is the durable ban-list port (SPEC_FULL.md §4.4).
type Storage interface {
	// StoreAndRemoveObsoletes purges expired records, removes any existing
	// record for (set, ip), appends the new one, and persists the result.
	// It returns true iff a record for (set, ip) was present before the
	// call (SPEC_FULL.md §4.4).
	StoreAndRemoveObsoletes(set, ip string, banUntil *time.Time) (bool, error)
}

// FileStorage implements Storage as a whole-file-rewrite-on-mutate YAML or
// JSON list, chosen by the Path extension. The rewrite-by-rename discipline
// is grounded on the teacher's internal/store/filesystem write-then-delete
// symmetry (haukened-gone), adapted here to whole-file atomic replace
// instead of per-blob files.
type FileStorage struct {
	Path  string
	Clock domain.Clock

	mu sync.Mutex
}

func (f *FileStorage) clock() domain.Clock {
	if f.Clock == nil {
		return domain.RealClock{}
	}
	return f.Clock
}

func (f *FileStorage) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

func (f *FileStorage) read() ([]Record, error) {
	raw, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalIO, "read ban storage", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var records []Record
	if f.isYAML() {
		err = yaml.Unmarshal(raw, &records)
	} else {
		err = json.Unmarshal(raw, &records)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternalIO, "parse ban storage", err)
	}
	return records, nil
}

func (f *FileStorage) write(records []Record) error {
	var raw []byte
	var err error
	if f.isYAML() {
		raw, err = yaml.Marshal(records)
	} else {
		raw, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return domain.WrapError(domain.ErrExternalIO, "encode ban storage", err)
	}
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".ban-storage-*.tmp")
	if err != nil {
		return domain.WrapError(domain.ErrExternalIO, "create ban storage temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return domain.WrapError(domain.ErrExternalIO, "write ban storage temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return domain.WrapError(domain.ErrExternalIO, "close ban storage temp file", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return domain.WrapError(domain.ErrExternalIO, "rename ban storage temp file", err)
	}
	return nil
}

// StoreAndRemoveObsoletes implements Storage per SPEC_FULL.md §4.4: reads
// the list, drops entries whose ban_until <= now, removes any entry
// matching (set, ip), appends the new entry, rewrites atomically, and
// returns whether a same-(set, ip) entry previously existed.
func (f *FileStorage) StoreAndRemoveObsoletes(set, ip string, banUntil *time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.read()
	if err != nil {
		return false, err
	}
	now := f.clock().Now()

	existed := false
	kept := records[:0]
	for _, r := range records {
		if exp := r.expiry(); exp != nil && !exp.After(now) {
			continue // purge expired
		}
		if r.NFSet == set && r.IP == ip {
			existed = true
			continue // drop, will be replaced below
		}
		kept = append(kept, r)
	}
	kept = append(kept, fromExpiry(ip, set, banUntil))

	if err := f.write(kept); err != nil {
		return false, err
	}
	return existed, nil
}
