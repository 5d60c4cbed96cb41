// initalt/catalog_load.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package initalt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	av "github.com/climbout/climbout/aviation"
	"github.com/climbout/climbout/log"
	"github.com/climbout/climbout/util"
)

// ParseCatalog adds the entries in a catalog file to c. Two layouts are
// accepted and may be mixed:
//
//	{"EGKK": {"ADMAG2X": 6000, "CLN3X": 5000}, "EGLL": {...}}
//	{"ADMAG2X": 6000, "CLN3X": 5000}
//
// Bare SIDs at the top level belong to defaultAirfield, which is
// usually derived from the file name. Problems are reported to e and the
// offending entries skipped.
func ParseCatalog(c *SIDAltitudeCatalog, contents []byte, defaultAirfield string, e *util.ErrorLogger) {
	for _, dup := range util.FindDuplicateJSONKeys(contents) {
		if dup.Path == "" {
			e.Error(fmt.Errorf("%s: %w", dup.Key, ErrDuplicateCatalogSID))
		} else {
			e.Push(dup.Path)
			e.Error(fmt.Errorf("%s: %w", dup.Key, ErrDuplicateCatalogSID))
			e.Pop()
		}
	}

	var top map[string]json.RawMessage
	if err := util.UnmarshalJSONBytes(contents, &top); err != nil {
		e.Error(err)
		return
	}

	for key, raw := range top {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			airfield := av.NormalizeAirfield(key)
			var sids map[string]json.RawMessage
			if err := json.Unmarshal(raw, &sids); err != nil {
				e.Push(airfield)
				e.Error(err)
				e.Pop()
				continue
			}
			for sid, alt := range sids {
				addCatalogEntry(c, airfield, sid, alt, e)
			}
		} else {
			if defaultAirfield == "" {
				e.ErrorString("%s: SID given outside of an airfield", key)
				continue
			}
			addCatalogEntry(c, av.NormalizeAirfield(defaultAirfield), key, raw, e)
		}
	}
}

func addCatalogEntry(c *SIDAltitudeCatalog, airfield, sid string, raw json.RawMessage, e *util.ErrorLogger) {
	e.Push(airfield)
	defer e.Pop()

	if airfield == "" {
		e.ErrorString("%s: %v: empty airfield", sid, ErrInvalidCatalogEntry)
		return
	}
	if sid == "" {
		e.ErrorString("%v: empty SID", ErrInvalidCatalogEntry)
		return
	}

	alt, err := strconv.Atoi(string(raw))
	if err != nil {
		e.ErrorString("%s: %v: altitude %s is not an integer", sid, ErrInvalidCatalogEntry, raw)
		return
	}
	if alt <= 0 {
		e.ErrorString("%s: %v: altitude %d must be positive", sid, ErrInvalidCatalogEntry, alt)
		return
	}

	c.Register(airfield, sid, alt)
}

// LoadCatalogFiles reads the given catalog files (optionally zstd
// compressed) concurrently and merges them; where files disagree, the
// later file in paths wins.
func LoadCatalogFiles(paths []string, lg *log.Logger) (*SIDAltitudeCatalog, error) {
	contents := make([][]byte, len(paths))

	var eg errgroup.Group
	for i, path := range paths {
		eg.Go(func() error {
			b, err := util.ReadResource(path)
			if err != nil {
				return err
			}
			contents[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c := NewSIDAltitudeCatalog()
	var e util.ErrorLogger
	for i, path := range paths {
		e.Push(path)
		ParseCatalog(c, contents[i], util.ResourceBaseName(path), &e)
		e.Pop()
	}
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, e.Err()
	}

	lg.Info("loaded SID altitude catalog", slog.Int("files", len(paths)),
		slog.Int("entries", c.Len()), slog.Any("airfields", c.Airfields()))
	return c, nil
}

// LoadCatalog loads the catalog files and stores a copy in the user's
// cache under cacheName. If the files can't be loaded, the cached copy
// from a previous run is used instead, if there is one.
func LoadCatalog(paths []string, cacheName string, lg *log.Logger) (*SIDAltitudeCatalog, error) {
	c, err := LoadCatalogFiles(paths, lg)
	if err == nil {
		if cerr := util.CacheStoreObject(cacheName, c.Entries()); cerr != nil {
			lg.Warn("unable to cache SID altitude catalog", slog.Any("error", cerr))
		}
		return c, nil
	}

	var entries []SIDAltitude
	when, cerr := util.CacheRetrieveObject(cacheName, &entries)
	if cerr != nil {
		return nil, err
	}

	lg.Warn("using cached SID altitude catalog", slog.Any("error", err), slog.Time("cached", when))
	c = NewSIDAltitudeCatalog()
	for _, ent := range entries {
		c.Register(ent.Airfield, ent.SID, ent.Altitude)
	}
	return c, nil
}
