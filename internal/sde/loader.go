// Package sde loads the EVE static data export and exposes it as the
// engine's read-only catalog. Data is immutable after Load and safe to
// share across concurrent appraisal runs.
package sde

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
	"github.com/ChiefOmnicron/starfoundry-sub004/internal/logger"
)

const sdeURL = "https://developers.eveonline.com/static-data/eve-online-static-data-latest-jsonl.zip"

// ItemGroup is group-level SDE metadata used to classify items.
type ItemGroup struct {
	ID         int32
	Name       string
	CategoryID int32
}

// Data holds the parsed static data. It implements industry.Catalog.
type Data struct {
	Items  map[int32]*industry.Item // typeID -> item
	Groups map[int32]*ItemGroup     // groupID -> group metadata

	recipes     map[int32]*industry.BlueprintRecipe // productTypeID -> recipe
	byBlueprint map[int32]*industry.BlueprintRecipe // blueprintTypeID -> recipe
	bonuses     map[int32]*industry.BlueprintBonus  // productTypeID -> ME/TE
}

// Load downloads (if needed) and parses the SDE.
func Load(dataDir string) (*Data, error) {
	zipPath := filepath.Join(dataDir, "sde.zip")
	extractDir := filepath.Join(dataDir, "sde")

	if _, err := os.Stat(extractDir); os.IsNotExist(err) {
		logger.Info("SDE", "Downloading data...")
		if err := downloadFile(zipPath, sdeURL); err != nil {
			return nil, fmt.Errorf("download SDE: %w", err)
		}
		logger.Info("SDE", "Extracting data...")
		if err := extractZip(zipPath, extractDir); err != nil {
			return nil, fmt.Errorf("extract SDE: %w", err)
		}
	}

	data := newData()
	if err := data.loadTypes(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading blueprints...")
	if err := data.loadBlueprints(extractDir); err != nil {
		return nil, err
	}
	if err := data.loadBonuses(extractDir); err != nil {
		return nil, err
	}

	logger.Section("SDE Statistics")
	logger.Stats("Item types", len(data.Items))
	logger.Stats("Groups", len(data.Groups))
	logger.Stats("Recipes", len(data.recipes))
	logger.Stats("Blueprint bonuses", len(data.bonuses))
	return data, nil
}

func newData() *Data {
	return &Data{
		Items:       make(map[int32]*industry.Item),
		Groups:      make(map[int32]*ItemGroup),
		recipes:     make(map[int32]*industry.BlueprintRecipe),
		byBlueprint: make(map[int32]*industry.BlueprintRecipe),
		bonuses:     make(map[int32]*industry.BlueprintBonus),
	}
}

func (d *Data) loadTypes(dir string) error {
	// Groups first, for the category mapping.
	logger.Info("SDE", "Loading groups...")
	err := readJSONL(dir, "groups", func(raw json.RawMessage) error {
		var g struct {
			Key        int32             `json:"_key"`
			Name       map[string]string `json:"name"`
			CategoryID int32             `json:"categoryID"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		d.Groups[g.Key] = &ItemGroup{
			ID:         g.Key,
			Name:       strings.TrimSpace(g.Name["en"]),
			CategoryID: g.CategoryID,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	logger.Info("SDE", "Loading item types...")
	return readJSONL(dir, "types", func(raw json.RawMessage) error {
		var t struct {
			Key            int32             `json:"_key"`
			Name           map[string]string `json:"name"`
			Volume         float64           `json:"volume"`
			PackagedVolume float64           `json:"packagedVolume"`
			Published      bool              `json:"published"`
			GroupID        int32             `json:"groupID"`
			MetaGroupID    int32             `json:"metaGroupID"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		if !t.Published {
			return nil
		}
		name := t.Name["en"]
		if name == "" {
			return nil
		}
		var categoryID int32
		if g, ok := d.Groups[t.GroupID]; ok {
			categoryID = g.CategoryID
		}
		d.Items[t.Key] = &industry.Item{
			TypeID:           t.Key,
			Name:             name,
			CategoryID:       categoryID,
			GroupID:          t.GroupID,
			Volume:           t.Volume,
			MetaGroupID:      t.MetaGroupID,
			RepackagedVolume: t.PackagedVolume,
		}
		return nil
	})
}

// readJSONL finds and reads a .jsonl file by base name from the extracted
// SDE directory.
func readJSONL(dir, baseName string, fn func(json.RawMessage) error) error {
	// Search for the file recursively
	var filePath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(info.Name(), ".jsonl")
		if strings.EqualFold(name, baseName) {
			filePath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return err
	}
	if filePath == "" {
		logger.Warn("SDE", fmt.Sprintf("File %s.jsonl not found, skipping", baseName))
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(json.RawMessage(line)); err != nil {
			continue // skip malformed lines
		}
	}
	return scanner.Err()
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	// Resolve destination to an absolute path for zip slip prevention
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve extract dir: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(dstAbs, f.Name)

		// Zip slip guard: ensure the resolved path stays within dst
		if rel, err := filepath.Rel(dstAbs, fpath); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("illegal zip entry path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(fpath), 0755)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(fpath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
